package kvp

import "adpnorm/internal/adp"

// Rank is one entry of a key class's ranked KVP list.
type Rank struct {
	PageNo   int
	KVPID    string
	Reserved string
}

// Ranking orders the competing KVPs of one key class, best first.
type Ranking struct {
	KeyClassID   string
	KeyClassName string
	KeyClassType string
	Ranked       []Rank
}

// RankingIndex is the document's KeyClassRankedList.
type RankingIndex []Ranking

// RankingsFrom converts the document's decoded rankings.
func RankingsFrom(src []adp.KeyClassRanking) RankingIndex {
	out := make(RankingIndex, 0, len(src))
	for _, r := range src {
		ranking := Ranking{
			KeyClassID:   r.KeyClassID.Value,
			KeyClassName: r.KeyClassName.Value,
			KeyClassType: r.KeyClassType.Value,
			Ranked:       make([]Rank, 0, len(r.KVPRankedList)),
		}
		for _, k := range r.KVPRankedList {
			ranking.Ranked = append(ranking.Ranked, Rank{
				PageNo:   k.PageNo.Or(0),
				KVPID:    k.KVPID.Value,
				Reserved: k.Reserved1.Value,
			})
		}
		out = append(out, ranking)
	}
	return out
}

// Find returns the 0-based position of kvpID within the first ranking whose
// id and name are exactly keyClassID and keyClass. It returns -1 when no such
// ranking exists or the ranking does not list kvpID.
func (idx RankingIndex) Find(keyClass, keyClassID, kvpID string) int {
	for _, r := range idx {
		if r.KeyClassID == "" || r.KeyClassID != keyClassID || r.KeyClassName == "" || r.KeyClassName != keyClass {
			continue
		}
		for i, rank := range r.Ranked {
			if rank.KVPID != "" && rank.KVPID == kvpID {
				return i
			}
		}
		return -1
	}
	return -1
}
