// Package storage is the artifact store boundary: generated invoice
// PDFs, receipt images and payment confirmations all go through it.
package storage

import "context"

// ObjectStore stores named binary blobs and hands back a durable,
// retrievable URL. Two uploads under different names never conflict;
// uploading under an existing name overwrites.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
