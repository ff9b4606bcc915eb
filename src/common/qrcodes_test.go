package common

import (
	"cinco/src/db"
	"cinco/src/models"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gorm.io/gorm"
)

func (s *WorkflowSuite) TestIssueMemberCodesSeedsFromHighestIssued() {
	team := s.seedPaidTeam([]models.Member{
		{FullName: "Old", Email: "old@example.com", MobileNumber: "09170000031"},
	})
	s.Require().NotZero(team.ID)

	var codes []IssuedCode
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error
		codes, err = IssueMemberCodes(context.Background(), tx, 2)
		return err
	})

	s.Require().NoError(err)
	s.Require().Len(codes, 2)
	s.Equal(uint(101), codes[0].Sequence)
	s.Equal("Cinco000101", codes[0].Plain)
	s.Equal("Cinco000102.png", codes[1].Image)
	_, err = os.Stat(filepath.Join(s.QRDir, codes[1].Image))
	s.NoError(err)
}

func (s *WorkflowSuite) TestIssueMemberCodesRollbackKeepsCounter() {
	var codes []IssuedCode
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error
		codes, err = IssueMemberCodes(context.Background(), tx, 3)
		if err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	s.Error(err)
	RemoveIssuedCodes(codes)
	entries, _ := os.ReadDir(s.QRDir)
	s.Empty(entries)

	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		codes, err = IssueMemberCodes(context.Background(), tx, 1)
		return err
	})
	s.Require().NoError(err)
	s.Equal(uint(1), codes[0].Sequence)
}

func (s *WorkflowSuite) TestConcurrentBatchesNeverShareSequence() {
	const batches = 8
	const perBatch = 3
	var (
		mu   sync.Mutex
		seen []uint
		wg   sync.WaitGroup
	)
	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.GetDb().Transaction(func(tx *gorm.DB) error {
				codes, err := IssueMemberCodes(context.Background(), tx, perBatch)
				if err != nil {
					return err
				}
				for j := 1; j < len(codes); j++ {
					s.Equal(codes[j-1].Sequence+1, codes[j].Sequence)
				}
				mu.Lock()
				for _, c := range codes {
					seen = append(seen, c.Sequence)
				}
				mu.Unlock()
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Require().Len(seen, batches*perBatch)
	sort.Slice(seen, func(a, b int) bool { return seen[a] < seen[b] })
	for i, v := range seen {
		s.Equal(uint(i+1), v)
	}
}
