// Package config loads engine configuration.
//
// Configuration starts from Default, is overlaid by a TOML or YAML file,
// and then by MARGINALIA_* environment variables:
//
//	cfg, err := config.Load("marginalia.toml")
//	if err == nil {
//		err = cfg.ApplyEnv(os.LookupEnv)
//	}
//	if err == nil {
//		err = cfg.Validate()
//	}
//
// A Watcher reloads the file when it changes on disk.
package config
