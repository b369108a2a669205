package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DomainHistory separates history checksums from any other use of the hash.
// The version suffix allows a future change of what is covered.
const DomainHistory = "trellis/history/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

type checksumBody struct {
	ProjectID string            `json:"project_id"`
	UndoLen   int               `json:"undo_len"`
	Entries   []json.RawMessage `json:"entries"`
}

// checksum covers everything needed to rebuild the stacks. Marshalling
// compacts each raw entry, so indentation in the file does not matter.
func checksum(projectID string, undoLen int, entries []json.RawMessage) (string, error) {
	data, err := json.Marshal(checksumBody{ProjectID: projectID, UndoLen: undoLen, Entries: entries})
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainHistory, data), nil
}
