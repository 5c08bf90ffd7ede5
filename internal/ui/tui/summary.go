package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/orchestration"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
)

// NetworkSummary describes one declared network.
type NetworkSummary struct {
	Name    string `json:"name"`
	CIDR    string `json:"cidr"`
	Public  int    `json:"public"`
	Private int    `json:"private"`
}

// KindCount is the number of declared resources of one kind.
type KindCount struct {
	Kind  topology.Kind `json:"kind"`
	Count int           `json:"count"`
}

// Summary is the printable digest of an assembled topology.
type Summary struct {
	Name   string `json:"name"`
	Region string `json:"region"`

	Networks []NetworkSummary `json:"networks"`
	Peered   bool             `json:"peered"`

	Cluster  string `json:"cluster"`
	Version  string `json:"version"`
	Capacity string `json:"capacity"`

	VirtualCluster string `json:"virtualCluster"`
	Namespace      string `json:"namespace"`
	Application    string `json:"application"`

	DebugPort    int `json:"debugPort"`
	IngressRules int `json:"ingressRules"`

	Kinds        []KindCount `json:"kinds"`
	Resources    int         `json:"resources"`
	Outputs      []string    `json:"outputs"`
	RoleMappings []string    `json:"roleMappings"`
}

// NewSummary digests result for cfg.
func NewSummary(cfg *config.Config, result *orchestration.Result) Summary {
	tmpl := result.Template
	s := Summary{
		Name:           cfg.Name,
		Region:         cfg.Region,
		Peered:         len(tmpl.ResourcesOfKind(topology.KindPeeringConnection)) > 0,
		Cluster:        cfg.Cluster.Name,
		Version:        cfg.Cluster.Version,
		Capacity:       result.Capacity,
		VirtualCluster: cfg.Containers.VirtualClusterName,
		Namespace:      cfg.Containers.Namespace,
		Application:    cfg.Serverless.Name,
		DebugPort:      config.DebugPort,
		Resources:      tmpl.Len(),
	}

	subnets := tmpl.ResourcesOfKind(topology.KindSubnet)
	for _, vpc := range []config.VPCConfig{cfg.Network.Dev, cfg.Network.EMR} {
		n := NetworkSummary{Name: vpc.Name, CIDR: vpc.CIDR}
		ref := topology.RefTo(naming.VPC(vpc.Name))
		for _, sub := range subnets {
			if sub.Properties["VpcId"] != ref {
				continue
			}
			if public, _ := sub.Properties["MapPublicIpOnLaunch"].(bool); public {
				n.Public++
			} else {
				n.Private++
			}
		}
		s.Networks = append(s.Networks, n)
	}

	for _, r := range tmpl.ResourcesOfKind(topology.KindSecurityGroupIngress) {
		if r.Properties["FromPort"] == config.DebugPort {
			s.IngressRules++
		}
	}

	counts := make(map[topology.Kind]int)
	for _, r := range tmpl.Resources() {
		counts[r.Kind]++
	}
	for kind, n := range counts {
		s.Kinds = append(s.Kinds, KindCount{Kind: kind, Count: n})
	}
	sort.Slice(s.Kinds, func(i, j int) bool { return s.Kinds[i].Kind < s.Kinds[j].Kind })

	for _, o := range result.Outputs {
		s.Outputs = append(s.Outputs, o.Key())
	}
	for _, m := range result.RoleMappings {
		groups := "-"
		if len(m.Groups) > 0 {
			groups = strings.Join(m.Groups, ",")
		}
		s.RoleMappings = append(s.RoleMappings, fmt.Sprintf("%s -> %s [%s]", m.RoleARN, m.Username, groups))
	}
	return s
}

// RenderSummary renders s for the terminal. Styling degrades to plain text
// when the output is not a terminal.
func RenderSummary(s Summary) string {
	var b strings.Builder

	title := fmt.Sprintf("emrdebug: %s", s.Name)
	if s.Region != "" {
		title += fmt.Sprintf(" (%s)", s.Region)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	section(&b, "Networks")
	for _, n := range s.Networks {
		row(&b, n.Name, fmt.Sprintf("%s  %d public / %d private", n.CIDR, n.Public, n.Private))
	}
	icon, style := statusIcon(s.Peered)
	fmt.Fprintf(&b, "    %s %s\n", style(icon), style("peered"))

	section(&b, "Orchestration cluster")
	row(&b, "cluster", fmt.Sprintf("%s (%s)", s.Cluster, s.Version))
	row(&b, "capacity policy", s.Capacity)

	section(&b, "Job runtimes")
	row(&b, "virtual cluster", fmt.Sprintf("%s -> namespace %s", s.VirtualCluster, s.Namespace))
	row(&b, "serverless application", s.Application)

	section(&b, "Bastion")
	row(&b, "debug port", fmt.Sprintf("%d", s.DebugPort))
	row(&b, "ingress rules", fmt.Sprintf("%d", s.IngressRules))

	if len(s.RoleMappings) > 0 {
		section(&b, "Role mappings")
		for _, m := range s.RoleMappings {
			fmt.Fprintf(&b, "    %s\n", m)
		}
	}

	section(&b, fmt.Sprintf("Resources (%d)", s.Resources))
	for _, k := range s.Kinds {
		row(&b, string(k.Kind), fmt.Sprintf("%d", k.Count))
	}

	section(&b, "Outputs")
	for _, o := range s.Outputs {
		fmt.Fprintf(&b, "    %s\n", o)
	}

	return b.String()
}

func section(b *strings.Builder, name string) {
	b.WriteString(groupStyle.Render("  " + name))
	b.WriteString("\n")
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "    %s %s\n", labelStyle.Render(fmt.Sprintf("%-38s", key)), value)
}

func statusIcon(ready bool) (string, styleFunc) {
	if ready {
		return markDone, sf(doneStyle)
	}
	return markFailed, sf(failStyle)
}
