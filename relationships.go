package main

import "fmt"

// relationshipIndex is the bidirectional foreign-key map built once per
// Database wrapper: forward keys the child field, reverse accumulates
// per parent field (a parent field may be referenced by many children).
type relationshipIndex struct {
	forward map[*Field]*Relationship
	reverse map[*Field][]*Relationship
}

// buildRelationshipIndex enumerates the declared relationships between
// every unordered pair of included tables and resolves each one's
// leading column pair to domain fields.
func buildRelationshipIndex(d *Database) (*relationshipIndex, error) {
	models, err := d.Models()
	if err != nil {
		return nil, err
	}

	idx := &relationshipIndex{
		forward: make(map[*Field]*Relationship),
		reverse: make(map[*Field][]*Relationship),
	}

	for i := 0; i < len(models); i++ {
		for j := i + 1; j < len(models); j++ {
			declared, err := d.src.Relationships(models[i].table.Name, models[j].table.Name)
			if err != nil {
				return nil, fmt.Errorf("relationships between %s and %s: %w",
					models[i].table.Name, models[j].table.Name, err)
			}
			for _, sr := range declared {
				rel, err := resolveRelationship(d, sr)
				if err != nil {
					return nil, err
				}
				idx.forward[rel.ToField] = rel
				idx.reverse[rel.FromField] = append(idx.reverse[rel.FromField], rel)
			}
		}
	}
	return idx, nil
}

func resolveRelationship(d *Database, sr SourceRelationship) (*Relationship, error) {
	toModel, err := d.modelByTable(sr.ToTable)
	if err != nil {
		return nil, err
	}
	fromModel, err := d.modelByTable(sr.FromTable)
	if err != nil {
		return nil, err
	}
	toField, err := toModel.fieldByColumn(sr.ToColumn)
	if err != nil {
		return nil, err
	}
	fromField, err := fromModel.fieldByColumn(sr.FromColumn)
	if err != nil {
		return nil, err
	}
	return &Relationship{ToField: toField, FromField: fromField}, nil
}
