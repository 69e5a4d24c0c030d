package fields

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"adpnorm/internal/domain"
)

// Flatten converts the page's field tree into rows, parents before their
// children, numbered in that order.
func Flatten(page *Field, jobID, pageID uuid.UUID) ([]domain.Field, error) {
	var rows []domain.Field
	ids := map[*Field]uuid.UUID{}
	var err error

	page.Walk(func(parent, f *Field) {
		if err != nil {
			return
		}
		vars, mErr := json.Marshal(f.Vars.Map())
		if mErr != nil {
			err = fmt.Errorf("fields.Flatten: %s: %w", f.Name, mErr)
			return
		}

		id := uuid.New()
		ids[f] = id
		row := domain.Field{
			ID:            id,
			JobID:         jobID,
			PageID:        pageID,
			Seq:           len(rows),
			Name:          f.Name,
			Type:          f.Type,
			Text:          f.Text,
			Status:        f.Status,
			Confidence:    atoiOrZero(f.Vars.Value(VarConfidence)),
			KeyClass:      f.Vars.Value(VarKeyClassName),
			Tier:          f.Vars.Value(VarKeyClassConfidence),
			Sensitivity:   f.Vars.Value(VarSensitivity) == "True",
			LineItemID:    optionalInt(&f.Vars, VarLineItemID),
			SeqLineItemID: optionalInt(&f.Vars, VarSeqLineItemID),
			Pos:           f.Vars.Value(VarPosition),
			KeyPos:        f.Vars.Value(VarKeyPosition),
			Variables:     vars,
		}
		if parentID, ok := ids[parent]; ok {
			row.ParentID = &parentID
		}
		rows = append(rows, row)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PageVariables encodes the page's own variables.
func PageVariables(page *Field) (json.RawMessage, error) {
	b, err := json.Marshal(page.Vars.Map())
	if err != nil {
		return nil, fmt.Errorf("fields.PageVariables: %w", err)
	}
	return b, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func optionalInt(v *Variables, name string) *int {
	s, ok := v.Get(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
