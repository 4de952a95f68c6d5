package patient

import "fmt"

// caseIDLock is the advisory lock key serializing case id generation. Two
// concurrent creates otherwise read the same MAX and collide; the lock makes
// the read-then-insert atomic per transaction, and UNIQUE(case_no) backstops
// it.
const caseIDLock = 824470001

// nextCaseNo formats the successor of the highest assigned case number.
// A nil max means no well-formed case id exists yet and numbering starts
// at 1.
func nextCaseNo(prefix string, max *int64) string {
	next := int64(1)
	if max != nil {
		next = *max + 1
	}
	return fmt.Sprintf("%s-%06d", prefix, next)
}
