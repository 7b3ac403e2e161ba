package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/feedformatter/feed"
	"github.com/theoremus-urban-solutions/feedformatter/xmltree"
)

// LoadOptions controls how a document becomes a feed.
type LoadOptions struct {
	// Encoding overrides detection when set.
	Encoding *Encoding
	// AssignIDs gives the channel and every item without an id, guid, link
	// or url a stable "urn:uuid:" identifier.
	AssignIDs bool
}

// identityKeys are the inputs any format can derive an identifier from.
var identityKeys = []string{"id", "guid", "link", "url"}

// Load fetches urlOrPath, decodes it and builds the feed it describes.
func Load(ctx context.Context, f *Fetcher, urlOrPath string, opts LoadOptions) (*feed.Feed, error) {
	data, contentType, err := f.Fetch(ctx, urlOrPath)
	if err != nil {
		return nil, err
	}
	enc := DetectEncoding(urlOrPath, contentType)
	if opts.Encoding != nil {
		enc = *opts.Encoding
	}
	return Parse(data, enc, urlOrPath, opts)
}

// Parse builds a feed from raw document bytes. origin seeds assigned ids.
func Parse(data []byte, enc Encoding, origin string, opts LoadOptions) (*feed.Feed, error) {
	doc, err := Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	fd, err := feed.FromUFP(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	if opts.AssignIDs {
		AssignIDs(fd, origin)
	}
	return fd, nil
}

// AssignIDs sets "id" on the channel and on each item that has no identity
// key. The ids are name-based (SHA-1) UUIDs of the origin, position and
// title, so re-rendering the same document yields the same ids. Maps are
// replaced by copies, never modified.
func AssignIDs(fd *feed.Feed, origin string) {
	if !hasIdentity(fd.Channel) {
		fd.Channel = withID(fd.Channel, stableID(origin, "feed", fd.Channel["title"]))
	}
	for i, item := range fd.Items {
		if !hasIdentity(item) {
			fd.Items[i] = withID(item, stableID(origin, fmt.Sprintf("item/%d", i), item["title"]))
		}
	}
}

func hasIdentity(values map[string]any) bool {
	for _, k := range identityKeys {
		if v, ok := values[k]; ok && v != nil {
			return true
		}
	}
	return false
}

func withID(values map[string]any, id string) map[string]any {
	out := xmltree.Copy(values)
	out["id"] = id
	return out
}

func stableID(origin, position string, title any) string {
	name := origin + "#" + position + "#" + xmltree.ScalarText(title)
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
