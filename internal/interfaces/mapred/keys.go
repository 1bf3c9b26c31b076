// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package mapred implements both ends of the mapred relation, over which a
// MapReduce history server publishes its spec, resource managers,
// endpoints and host map to its clients.
package mapred

// Facts exchanged on the relation.
const (
	ResourceManagersKey = "resourcemanagers"
	PortKey             = "port"
	HistoryHTTPKey      = "historyserver-http"
	HistoryIPCKey       = "historyserver-ipc"
	HasSlaveKey         = "has_slave"
	EtcHostsKey         = "etc_hosts"
)
