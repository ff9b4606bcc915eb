package common

import (
	"cinco/src/db"
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/types"
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

const (
	DASHBOARD_CACHE_KEY = "admin:dashboard"
	DASHBOARD_CACHE_TTL = 30 * time.Second
	LATEST_MEMBERS      = 10
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrAlreadyClaimed = errors.New("member has already claimed")
	ErrTeamNotPaid    = errors.New("team has not paid")
)

type DashboardStats struct {
	TotalPlayers  int64           `json:"total_players"`
	TotalShirts   int64           `json:"total_shirts"`
	TotalEarnings string          `json:"total_earnings"`
	LatestMembers []models.Member `json:"latest_members"`
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatEarnings renders an amount with thousands separators and 2 decimals.
func FormatEarnings(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}

func GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	hit, err := lib.CacheGetJSON(ctx, DASHBOARD_CACHE_KEY, &stats)
	if err != nil {
		log.Printf("[redis] Error reading dashboard: %s\n", err.Error())
	}
	if hit {
		return &stats, nil
	}

	dbc := db.GetDb()
	err = dbc.
		Model(&models.Member{}).
		Joins("JOIN teams ON teams.id = members.team_id AND teams.deleted_at IS NULL").
		Where("teams.transaction_status = ?", types.TRANSACTION_PAID).
		Count(&stats.TotalPlayers).
		Error
	if err != nil {
		return nil, err
	}
	var paid struct {
		Teams    int64
		Shirts   int64
		Earnings float64
	}
	err = dbc.
		Model(&models.Team{}).
		Select("COUNT(*) AS teams, COALESCE(SUM(additional_shirt_count), 0) AS shirts, COALESCE(SUM(total_payment), 0) AS earnings").
		Where("transaction_status = ?", types.TRANSACTION_PAID).
		Scan(&paid).
		Error
	if err != nil {
		return nil, err
	}
	stats.TotalShirts = paid.Teams + paid.Shirts
	stats.TotalEarnings = FormatEarnings(paid.Earnings)
	err = dbc.
		Preload("Team").
		Order("created_at desc, id desc").
		Limit(LATEST_MEMBERS).
		Find(&stats.LatestMembers).
		Error
	if err != nil {
		return nil, err
	}
	if err := lib.CacheSetJSON(ctx, DASHBOARD_CACHE_KEY, &stats, DASHBOARD_CACHE_TTL); err != nil {
		log.Printf("[redis] Error caching dashboard: %s\n", err.Error())
	}
	return &stats, nil
}

func ListMembers() ([]models.Member, error) {
	var members []models.Member
	err := db.GetDb().
		Preload("Team").
		Order("id asc").
		Find(&members).
		Error
	return members, err
}

// ClaimMember marks the member whose QR payload is code as claimed.
func ClaimMember(code string) (*models.Member, error) {
	var member models.Member
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		err := tx.
			Preload("Team").
			Where("qrcode_name = ?", code).
			Take(&member).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		} else if err != nil {
			return err
		}
		if member.Team == nil || member.Team.TransactionStatus != types.TRANSACTION_PAID {
			return ErrTeamNotPaid
		}
		res := tx.
			Model(&models.Member{}).
			Where("id = ? AND status = ?", member.ID, types.CLAIM_PENDING).
			Update("status", types.CLAIM_CLAIMED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}
		member.Status = types.CLAIM_CLAIMED
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Claims] Member %d of team %d claimed\n", member.ID, member.TeamID)
	return &member, nil
}
