package matcher

import (
	"sort"

	"causacion-reconciler/internal/models"
)

// MovementIndex provides candidate lookups over the ledger movement pool.
// It stores positions into the original slice rather than pointers so that
// candidate lists preserve input order, which the first-seen tie-break
// depends on.
type MovementIndex struct {
	// ByDocument maps normalized document numbers to movement positions
	ByDocument map[string][]int

	// ByThirdParty maps normalized third-party tax IDs to movement positions
	ByThirdParty map[string][]int

	// All holds the indexed movements in input order
	All []*models.LedgerMovement
}

// NewMovementIndex builds the lookup structures over a movement slice.
// Placeholder keys are not indexed; a movement without a usable document
// number is unreachable through ByDocument but may still be reachable
// through its third party.
func NewMovementIndex(movements []*models.LedgerMovement) *MovementIndex {
	index := &MovementIndex{
		ByDocument:   make(map[string][]int),
		ByThirdParty: make(map[string][]int),
		All:          movements,
	}

	for i, movement := range movements {
		if !models.IsPlaceholder(movement.DocumentNumber) {
			key := models.NormalizeKey(movement.DocumentNumber)
			index.ByDocument[key] = append(index.ByDocument[key], i)
		}
		if !models.IsPlaceholder(movement.ThirdPartyID) {
			key := models.NormalizeKey(movement.ThirdPartyID)
			index.ByThirdParty[key] = append(index.ByThirdParty[key], i)
		}
	}

	return index
}

// DocumentCandidates returns the positions of movements whose document
// number matches the folio, in input order
func (idx *MovementIndex) DocumentCandidates(folio string) []int {
	if models.IsPlaceholder(folio) {
		return nil
	}
	return idx.ByDocument[models.NormalizeKey(folio)]
}

// ThirdPartyCandidates returns the positions of movements whose third party
// matches either tax ID, deduplicated and in input order
func (idx *MovementIndex) ThirdPartyCandidates(issuerID, receiverID string) []int {
	seen := make(map[int]bool)
	var candidates []int

	for _, id := range []string{issuerID, receiverID} {
		if models.IsPlaceholder(id) {
			continue
		}
		for _, pos := range idx.ByThirdParty[models.NormalizeKey(id)] {
			if !seen[pos] {
				seen[pos] = true
				candidates = append(candidates, pos)
			}
		}
	}

	// Issuer and receiver buckets can interleave; restore input order
	sort.Ints(candidates)
	return candidates
}

// IndexStats summarizes an index for diagnostics
type IndexStats struct {
	TotalMovements     int
	UniqueDocuments    int
	UniqueThirdParties int
}

// Stats returns statistics about the index
func (idx *MovementIndex) Stats() IndexStats {
	return IndexStats{
		TotalMovements:     len(idx.All),
		UniqueDocuments:    len(idx.ByDocument),
		UniqueThirdParties: len(idx.ByThirdParty),
	}
}
