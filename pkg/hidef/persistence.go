package hidef

// PersistenceTracker records one stability score per cluster id. Scores
// are kept as the raw textual tokens from the nodes file; parsing and
// re-formatting them could drift the value, and the consumer only needs
// the token echoed into the output document.
//
// The first score observed for a cluster id wins. HiDeF can emit the same
// cluster name on multiple rows; later rows still contribute membership
// edges but must not overwrite the score.
type PersistenceTracker struct {
	scores map[int]string
}

// NewPersistenceTracker creates an empty tracker.
func NewPersistenceTracker() *PersistenceTracker {
	return &PersistenceTracker{scores: make(map[int]string)}
}

// Record stores score for clusterID unless a score is already recorded.
// Empty tokens are ignored (rows without a score column).
func (t *PersistenceTracker) Record(clusterID int, score string) {
	if score == "" {
		return
	}
	if _, ok := t.scores[clusterID]; ok {
		return
	}
	t.scores[clusterID] = score
}

// Score returns the recorded score token for clusterID.
func (t *PersistenceTracker) Score(clusterID int) (string, bool) {
	s, ok := t.scores[clusterID]
	return s, ok
}

// Len returns the number of clusters with a recorded score.
func (t *PersistenceTracker) Len() int {
	return len(t.scores)
}
