// Package config provides configuration parsing for rsx projects.
//
// The configuration is stored in rsx.json or rsx.yaml at the project
// root. Both formats share one schema; YAML is decoded into a map first
// and then mapped onto the same struct.
//
// # Configuration File Structure
//
//	{
//	  "paths": {
//	    "templates": "templates",
//	    "output": "dist"
//	  },
//	  "render": {
//	    "doctype": true,
//	    "allowTainted": false
//	  },
//	  "gen": {
//	    "package": "views"
//	  },
//	  "serve": {
//	    "address": "localhost:3000",
//	    "metricsPath": "/metrics",
//	    "redis": "redis://localhost:6379/0",
//	    "cacheTTL": "5m"
//	  },
//	  "publish": {
//	    "bucket": "my-site",
//	    "prefix": "pages",
//	    "region": "eu-west-1"
//	  },
//	  "log": {
//	    "level": "info"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Templates:", cfg.TemplatesPath())
package config
