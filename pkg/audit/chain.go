package audit

import (
	"fmt"
	"strings"

	"sentinel-hq/janus/pkg/canonical"
)

// GenesisHash is the PrevHash of the first record in a stream.
const GenesisHash = canonical.HashPrefix + "0000000000000000000000000000000000000000000000000000000000000000"

// ComputeRecordHash returns the content hash of a record. The hash covers
// the entire record, including PrevHash, with the RecordHash field itself
// empty, so each record seals its predecessor and its own content in one
// digest.
func ComputeRecordHash(record *Record) (string, error) {
	shadow := *record
	shadow.RecordHash = ""
	return canonical.HashJSON(&shadow)
}

// VerifyChain checks an archived stream: strictly increasing sequence
// numbers, intact predecessor linkage, and a valid content hash on every
// record. Altering any one historical record fails verification for it and
// for every record after it.
func VerifyChain(records []*Record) error {
	prevHash := GenesisHash
	var prevSeq uint64

	for i, record := range records {
		if i == 0 {
			// Verification may start mid-stream; only a stream head is
			// required to link to the genesis constant.
			prevSeq = record.Seq - 1
			if record.Seq == 1 && record.PrevHash != GenesisHash {
				return &ChainError{Seq: record.Seq, Message: "stream head does not link to genesis"}
			}
		}
		if record.Seq != prevSeq+1 {
			return &ChainError{
				Seq:     record.Seq,
				Message: fmt.Sprintf("sequence gap: expected %d", prevSeq+1),
			}
		}
		if i > 0 && record.PrevHash != prevHash {
			return &ChainError{Seq: record.Seq, Message: "predecessor hash mismatch"}
		}
		computed, err := ComputeRecordHash(record)
		if err != nil {
			return &ChainError{Seq: record.Seq, Message: "record not hashable", Cause: err}
		}
		if !strings.EqualFold(computed, record.RecordHash) {
			return &ChainError{Seq: record.Seq, Message: "content hash mismatch"}
		}
		prevHash = record.RecordHash
		prevSeq = record.Seq
	}
	return nil
}
