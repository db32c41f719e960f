// Package storage provides the object store that holds task artifacts.
//
// Keys are slash-separated paths such as "tasks/<id>/metadata.json". Every
// Upload is atomic: readers never observe a partially written object.
//
// # Backends
//
//   - storage/local: a directory on disk (default)
//   - storage/s3: Amazon S3 and S3-compatible services
//
// Backends register themselves on import; New selects one by Config.Provider:
//
//	storage:
//	  provider: "s3"
//	  bucket: "scribe-artifacts"
//	  region: "us-east-1"
package storage
