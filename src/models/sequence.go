package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is a named monotonic counter. Value holds the last number handed out.
type Sequence struct {
	Name      string `gorm:"primarykey;size:64"`
	Value     uint
	UpdatedAt time.Time
}

// ReserveSequence takes n consecutive numbers from the named counter and
// returns the first one. The counter row stays locked until tx ends, so
// concurrent reservations are serialized. When the row does not exist yet it
// is created starting at seed(tx).
func ReserveSequence(tx *gorm.DB, name string, n uint, seed func(tx *gorm.DB) (uint, error)) (uint, error) {
	if n == 0 {
		return 0, errors.New("cannot reserve an empty range")
	}
	var seq Sequence
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		Take(&seq).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		start, err := seed(tx)
		if err != nil {
			return 0, fmt.Errorf("could not seed sequence %s: %w", name, err)
		}
		if err := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Sequence{Name: name, Value: start}).
			Error; err != nil {
			return 0, err
		}
		err = tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			Take(&seq).
			Error
		if err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}
	first := seq.Value + 1
	if err := tx.
		Model(&Sequence{}).
		Where("name = ?", name).
		Update("value", seq.Value+n).
		Error; err != nil {
		return 0, err
	}
	return first, nil
}
