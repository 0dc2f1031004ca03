// Package server exposes rule sets as an HTTP and WebSocket validation
// service.
//
// # Endpoints
//
//	GET  /healthz                  liveness check, answers "ok"
//	GET  /metrics                  Prometheus metrics
//	GET  /v1/rules                 registered rules and their default messages
//	GET  /v1/rulesets              loaded rule sets
//	GET  /v1/rulesets/{ruleset}    one rule set's field paths and grouping
//	POST /v1/validate/{ruleset}    validate a document
//	GET  /v1/live/{ruleset}        live validation over a websocket
//
// A validate request binds the document to a fresh model and evaluates a
// pull-mode group over it:
//
//	POST /v1/validate/login
//	{"document": {"username": "al"}, "showAll": true}
//
//	{"valid": false,
//	 "errors": ["Please enter at least 3 characters.", "This field is required."],
//	 "fields": {"username": "Please enter at least 3 characters.", "password": "This field is required."}}
//
// # Live Sessions
//
// A live session binds an empty document and keeps a push-mode group and
// an effect over it. The client writes fields; after every client frame
// the server sends a state frame if the visible state changed:
//
//	-> {"type":"set","field":"username","value":"alice"}
//	-> {"type":"load","document":{"address":{"zip":"12345"}}}
//	-> {"type":"showAll"}
//	<- {"type":"state","seq":3,"valid":false,"errors":[...],"fields":{...}}
//	<- {"type":"error","error":{"code":"V012","message":"Unknown field reference",...}}
//
// Each session is served by the goroutine of its upgrade request. The
// server pings clients every HeartbeatInterval.
//
// # Example Usage
//
//	set, err := ruleset.LoadAll(ctx, []string{"rules/signup.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	collector := metrics.New()
//	validation.SetObserver(collector)
//
//	srv := server.New(server.DefaultConfig(), set, server.WithCollector(collector))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
