package config

const (
	delimiter = "."

	ConfigPrefix = "modkit"

	ConfigLogPrefix = ConfigPrefix + delimiter + "log"
	ConfigLogLevel  = ConfigLogPrefix + delimiter + "level"
	ConfigLogFormat = ConfigLogPrefix + delimiter + "format"

	ConfigPolicyPrefix           = ConfigPrefix + delimiter + "policy"
	ConfigPolicyPatternCacheSize = ConfigPolicyPrefix + delimiter + "pattern_cache_size"

	ConfigNamespacePrefix                 = ConfigPrefix + delimiter + "namespace"
	ConfigNamespaceSuppressBootstrapProbe = ConfigNamespacePrefix + delimiter + "suppress_bootstrap_probe"
)
