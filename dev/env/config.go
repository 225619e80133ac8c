package devenv

// PortalTestConfig is read from dev/.state/portal_config.json5 by the
// tests that log into the live portal.
type PortalTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// path to a chrome binary, empty uses the one on $PATH
	ExecPath string `json:"exec_path"`
}
