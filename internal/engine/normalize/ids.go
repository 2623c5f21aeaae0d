package normalize

import (
	"github.com/google/uuid"
)

// Atomic row ids must be stable across rebuilds: a node that already carries
// a durable id keeps it, and a node without one gets an id derived from its
// hierarchical path inside the analysis namespace. Re-normalizing an
// unchanged document therefore reproduces identical ids instead of minting
// fresh ones on every save.

func analysisNamespace(analysisID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("fmea:"+analysisID))
}

func pathID(ns uuid.UUID, path string) string {
	return uuid.NewSHA1(ns, []byte(path)).String()
}

func nodeID(existing string, ns uuid.UUID, path string) string {
	if existing != "" {
		return existing
	}
	return pathID(ns, path)
}
