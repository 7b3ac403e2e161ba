package server

import (
	"bytes"
	"sync"

	"github.com/theoremus-urban-solutions/feedformatter/store"
)

// documentCache keeps recently served documents in memory in front of the store.
type documentCache struct {
	mu   sync.RWMutex
	docs map[string]store.Document
}

func newDocumentCache() *documentCache {
	return &documentCache{docs: map[string]store.Document{}}
}

func (dc *documentCache) memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

func (dc *documentCache) get(name, format string) (store.Document, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	doc, ok := dc.docs[dc.memoKey(name, format)]
	return doc, ok
}

func (dc *documentCache) put(doc store.Document) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.docs[dc.memoKey(doc.Name, doc.Format)] = doc
}

func (dc *documentCache) drop(name, format string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	delete(dc.docs, dc.memoKey(name, format))
}
