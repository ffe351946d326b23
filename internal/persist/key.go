package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/specialistvlad/graphtools/internal/elementid"
)

// Key identifies one persisted component instance.
type Key struct {
	TypeName string
	ViewID   elementid.ID
	AssetKey string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.TypeName, k.ViewID, k.AssetKey)
}

// Hash returns the hex SHA-256 of the key parts.
func (k Key) Hash() string {
	h := sha256.New()
	// Parts are NUL-separated so ("ab","c") and ("a","bc") differ.
	fmt.Fprintf(h, "%s\x00%s\x00%s", k.TypeName, k.ViewID, k.AssetKey)
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the backend path of the key.
func (k Key) Path() string {
	sum := k.Hash()
	return path.Join(sum[:2], sum+".json")
}
