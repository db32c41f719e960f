// Package llm provides a config-driven chat-completion adapter built on the
// httpclient package.
//
// The adapter works with any vendor via the Dialect pattern, similar to how
// database/sql works with driver packages.
//
// # Usage
//
// Import a dialect package for side-effect registration, then create an adapter:
//
//	import (
//	    "github.com/kbukum/scribe/llm"
//	    _ "github.com/kbukum/scribe/llm/openai" // registers "openai"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Model:   "gpt-4o",
//	    Auth:    httpclient.BearerAuth(key),
//	})
//
//	text, err := llm.Complete(ctx, adapter, system, user)
package llm
