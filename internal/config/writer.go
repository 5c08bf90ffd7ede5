package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WriteFile writes cfg as YAML preceded by a descriptive header.
func WriteFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(header(cfg))
	sb.WriteString("\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func header(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("# emrdebug topology configuration\n")
	sb.WriteString(fmt.Sprintf("# Generated: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("#\n")
	sb.WriteString(fmt.Sprintf("# Networks: %s (%s) <-> %s (%s), %d zones\n",
		cfg.Network.Dev.Name, cfg.Network.Dev.CIDR, cfg.Network.EMR.Name, cfg.Network.EMR.CIDR, cfg.Network.MaxAZs))
	sb.WriteString(fmt.Sprintf("# Debug port: %d\n", DebugPort))
	sb.WriteString("#\n")
	sb.WriteString("# Render with: emrdebug synth -c <this file>\n")
	return sb.String()
}
