package config

// ApplyDefaults fills every unset field with the reference deployment value.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Partition == "" {
		c.Partition = DefaultPartition
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}

	c.applyNetworkDefaults()

	if c.Storage.PublicDataset == "" {
		c.Storage.PublicDataset = DefaultPublicDataset
	}
	if c.Devbox.InstanceType == "" {
		c.Devbox.InstanceType = DefaultDevboxInstanceType
	}

	c.applyClusterDefaults()
	c.applyCapacityDefaults()

	ct := &c.Containers
	if ct.Namespace == "" {
		ct.Namespace = DefaultContainersNamespace
	}
	if ct.VirtualClusterName == "" {
		ct.VirtualClusterName = DefaultVirtualClusterName
	}
	if ct.ServiceAccountPrefix == "" {
		ct.ServiceAccountPrefix = DefaultServiceAccountPrefix
	}
	if ct.Audience == "" {
		ct.Audience = DefaultTrustAudience
	}

	c.applyServerlessDefaults()
}

func (c *Config) applyNetworkDefaults() {
	n := &c.Network
	if n.Stack == "" {
		n.Stack = DefaultNetworkStack
	}
	if n.Dev.Name == "" {
		n.Dev.Name = DefaultDevVPCName
	}
	if n.Dev.CIDR == "" {
		n.Dev.CIDR = DefaultDevCIDR
	}
	if n.EMR.Name == "" {
		n.EMR.Name = DefaultEMRVPCName
	}
	if n.EMR.CIDR == "" {
		n.EMR.CIDR = DefaultEMRCIDR
	}
	if n.MaxAZs == 0 {
		n.MaxAZs = DefaultMaxAZs
	}
}

func (c *Config) applyClusterDefaults() {
	cl := &c.Cluster
	if cl.Name == "" {
		cl.Name = DefaultClusterName
	}
	if cl.Version == "" {
		cl.Version = DefaultClusterVersion
	}
	if cl.DefaultCapacity == nil {
		cl.DefaultCapacity = intPtr(DefaultClusterCapacity)
	}
	if cl.DefaultInstanceType == "" {
		cl.DefaultInstanceType = DefaultClusterInstanceType
	}
}

func (c *Config) applyCapacityDefaults() {
	cp := &c.Capacity
	if cp.Policy == "" {
		cp.Policy = CapacityPolicyNodePool
	}
	if cp.KarpenterVersion == "" {
		cp.KarpenterVersion = DefaultKarpenterVersion
	}
	if len(cp.Categories) == 0 {
		cp.Categories = DefaultCategories()
	}
	if len(cp.Architectures) == 0 {
		cp.Architectures = DefaultArchitectures()
	}
	if cp.MinGeneration == 0 {
		cp.MinGeneration = DefaultMinGeneration
	}
	if len(cp.CPUs) == 0 {
		cp.CPUs = DefaultCPUs()
	}
	if cp.SpotCPULimit == 0 {
		cp.SpotCPULimit = DefaultSpotCPULimit
	}
}

func (c *Config) applyServerlessDefaults() {
	s := &c.Serverless
	if s.Name == "" {
		s.Name = DefaultServerlessName
	}
	if s.ReleaseLabel == "" {
		s.ReleaseLabel = DefaultReleaseLabel
	}
	if s.Type == "" {
		s.Type = DefaultServerlessType
	}
	applyWorkerDefaults(&s.Driver, DefaultDriverCount)
	applyWorkerDefaults(&s.Executor, DefaultExecutorCount)
	if s.IdleTimeoutMinutes == 0 {
		s.IdleTimeoutMinutes = DefaultIdleTimeoutMinutes
	}
}

func applyWorkerDefaults(w *WorkerCapacity, count int) {
	if w.Count == nil {
		w.Count = intPtr(count)
	}
	if w.CPU == "" {
		w.CPU = DefaultWorkerCPU
	}
	if w.Memory == "" {
		w.Memory = DefaultWorkerMemory
	}
}

// Default returns a fully defaulted configuration for the given account.
func Default(account string) *Config {
	cfg := &Config{Account: account}
	cfg.ApplyDefaults()
	return cfg
}
