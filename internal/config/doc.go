// Package config loads the settings of the rvalid service and CLI.
//
// Settings come from rvalid.yaml (current directory or the user config
// directory), RVALID_* environment variables and built-in defaults, in
// that order of precedence from last to first.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  read_timeout: 10s
//	  metrics: true
//	rulesets:
//	  - ./rules/signup.yaml
//	  - s3://forms/rules/checkout.yaml
//	s3:
//	  region: eu-west-1
//	validation:
//	  messages_on_modified: true
//	  grouping:
//	    deep: true
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
