// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package yarn implements both ends of the yarn relation, over which a
// resource manager publishes its spec, address and endpoints.
package yarn

// Facts exchanged on the relation.
const (
	IPAddrKey = "ip_addr"
	PortKey   = "port"
	HSHTTPKey = "hs_http"
	HSIPCKey  = "hs_ipc"
	ReadyKey  = "yarn-ready"
)
