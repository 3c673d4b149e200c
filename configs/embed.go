// Package configs provides embedded configuration templates for haystackd.
//
// Templates are embedded at build time so `haystackd config init` works in
// every distribution, source builds and binary releases alike.
package configs

import _ "embed"

// MinimalExample is the minimal key=value config template.
//
//go:embed config.example.txt
var MinimalExample []byte

// ExtendedExample is the extended YAML server config template.
//
//go:embed server-config.example.yaml
var ExtendedExample []byte
