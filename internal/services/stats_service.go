package services

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/foodlinkhq/foodlink/internal/location"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/pkg/logger"
	"github.com/foodlinkhq/foodlink/pkg/metrics"
)

// Aggregation defaults.
const (
	DefaultMealsPerDonation = 5
	DefaultPeoplePerClaim   = 3
	DefaultLeaderboardLimit = 5
	dashboardRecentLimit    = 4
	dashboardNearbyLimit    = 10
)

// StatsConfig tunes the StatsService.
type StatsConfig struct {
	MealsPerDonation int
	PeoplePerClaim   int
	LeaderboardLimit int
	QueryPageLimit   int
	Classifier       location.Classifier
}

// Stats is the platform-wide summary.
type Stats struct {
	TotalDonations int64 `json:"total_donations"`
	ActiveDonors   int64 `json:"active_donors"`
	PartnerNGOs    int64 `json:"partner_ngos"`
	EstimatedMeals int64 `json:"estimated_meals"`
	PeopleFed      int64 `json:"people_fed"`
}

// DonorRank is a leaderboard row for a donor.
type DonorRank struct {
	DonorID   string `json:"donor_id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Donations int    `json:"donations"`
	Meals     int    `json:"meals"`
}

// CityRank is a leaderboard row for a city.
type CityRank struct {
	Name      string `json:"name"`
	Donations int    `json:"donations"`
	Meals     int    `json:"meals"`
}

// Leaderboard ranks donors and cities by donation count.
type Leaderboard struct {
	TopDonors []DonorRank `json:"top_donors"`
	TopCities []CityRank  `json:"top_cities"`
}

// DonorDashboard summarises a donor's own listings.
type DonorDashboard struct {
	TotalDonations   int               `json:"total_donations"`
	ActiveDonations  int               `json:"active_donations"`
	ClaimedDonations int               `json:"claimed_donations"`
	PeopleHelped     int               `json:"people_helped"`
	RecentDonations  []models.Donation `json:"recent_donations"`
}

// NGODashboard lists available donations near the NGO.
type NGODashboard struct {
	ActiveDonations int               `json:"active_donations"`
	NearbyDonations []models.Donation `json:"nearby_donations"`
}

// Dashboard is the per-user landing view; exactly one of Donor and NGO is set.
type Dashboard struct {
	Role  models.Role     `json:"role"`
	Donor *DonorDashboard `json:"donor,omitempty"`
	NGO   *NGODashboard   `json:"ngo,omitempty"`
}

// StatsService computes read-only views from full collection scans. Informational views
// never fail: storage errors degrade to zero or empty results.
type StatsService struct {
	repo       repository.Repository
	donations  *DonationService
	cfg        StatsConfig
	classifier location.Classifier
	log        *zap.Logger
}

// NewStatsService constructs a StatsService. donations backs the NGO dashboard.
func NewStatsService(repo repository.Repository, donations *DonationService, cfg StatsConfig) (*StatsService, error) {
	if repo == nil {
		return nil, errors.New("stats service: repository is required")
	}
	if donations == nil {
		return nil, errors.New("stats service: donation service is required")
	}

	if cfg.MealsPerDonation <= 0 {
		cfg.MealsPerDonation = DefaultMealsPerDonation
	}
	if cfg.PeoplePerClaim <= 0 {
		cfg.PeoplePerClaim = DefaultPeoplePerClaim
	}
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if cfg.QueryPageLimit <= 0 {
		cfg.QueryPageLimit = DefaultQueryPageLimit
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = location.CuratedClassifier{}
	}

	return &StatsService{
		repo:       repo,
		donations:  donations,
		cfg:        cfg,
		classifier: classifier,
		log:        logger.WithModule("stats"),
	}, nil
}

// GetStats returns platform totals. Any storage failure yields all zeros.
func (s *StatsService) GetStats(ctx context.Context) Stats {
	ctx = ensuredContext(ctx)

	stats, err := s.collectStats(ctx)
	if err != nil {
		metrics.AggregationFailures.WithLabelValues("stats").Inc()
		s.log.Warn("stats unavailable", zap.Error(err))
		return Stats{}
	}
	return stats
}

func (s *StatsService) collectStats(ctx context.Context) (Stats, error) {
	total, err := s.repo.CountDonations(ctx, repository.DonationFilter{})
	if err != nil {
		return Stats{}, err
	}
	donors, err := s.repo.CountUsers(ctx, models.RoleDonor)
	if err != nil {
		return Stats{}, err
	}
	ngos, err := s.repo.CountUsers(ctx, models.RoleNGO)
	if err != nil {
		return Stats{}, err
	}
	completed, err := s.repo.CountClaims(ctx, repository.ClaimFilter{Status: models.ClaimCompleted})
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalDonations: total,
		ActiveDonors:   donors,
		PartnerNGOs:    ngos,
		EstimatedMeals: total * int64(s.cfg.MealsPerDonation),
		PeopleFed:      completed * int64(s.cfg.PeoplePerClaim),
	}, nil
}

// GetLeaderboard ranks donors and cities. Any storage failure yields empty rankings.
func (s *StatsService) GetLeaderboard(ctx context.Context) Leaderboard {
	ctx = ensuredContext(ctx)

	board, err := s.collectLeaderboard(ctx)
	if err != nil {
		metrics.AggregationFailures.WithLabelValues("leaderboard").Inc()
		s.log.Warn("leaderboard unavailable", zap.Error(err))
		return Leaderboard{TopDonors: []DonorRank{}, TopCities: []CityRank{}}
	}
	return board
}

func (s *StatsService) collectLeaderboard(ctx context.Context) (Leaderboard, error) {
	donations, err := s.repo.ListDonations(ctx, repository.DonationFilter{Limit: s.cfg.QueryPageLimit})
	if err != nil {
		return Leaderboard{}, err
	}

	donorIDs := make([]string, 0, len(donations))
	for _, d := range donations {
		donorIDs = append(donorIDs, d.DonorID)
	}
	donorIDs = normaliseIDs(donorIDs)

	var users []models.User
	if len(donorIDs) > 0 {
		users, err = s.repo.ListUsers(ctx, repository.UserFilter{IDs: donorIDs})
		if err != nil {
			return Leaderboard{}, err
		}
	}

	return Leaderboard{
		TopDonors: RankDonors(donations, users, s.cfg.MealsPerDonation, s.cfg.LeaderboardLimit),
		TopCities: RankCities(donations, s.classifier, s.cfg.MealsPerDonation, s.cfg.LeaderboardLimit),
	}, nil
}

// RankDonors groups donations by donor and orders them by count, descending. Donors with
// equal counts keep the order in which they first appear in donations.
func RankDonors(donations []models.Donation, users []models.User, mealsPerDonation, limit int) []DonorRank {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	index := make(map[string]int)
	ranks := make([]DonorRank, 0)
	for _, d := range donations {
		i, ok := index[d.DonorID]
		if !ok {
			rank := DonorRank{DonorID: d.DonorID, Name: "Anonymous", Location: "Unknown"}
			if u, found := byID[d.DonorID]; found {
				if u.Name != "" {
					rank.Name = u.Name
				}
				if u.Location != "" {
					rank.Location = u.Location
				}
			}
			i = len(ranks)
			index[d.DonorID] = i
			ranks = append(ranks, rank)
		}
		ranks[i].Donations++
		ranks[i].Meals = ranks[i].Donations * mealsPerDonation
	}

	sort.SliceStable(ranks, func(a, b int) bool { return ranks[a].Donations > ranks[b].Donations })
	return truncate(ranks, limit)
}

// RankCities groups donations by the city of their pickup address. Addresses that yield
// no city key are skipped.
func RankCities(donations []models.Donation, classifier location.Classifier, mealsPerDonation, limit int) []CityRank {
	if classifier == nil {
		classifier = location.CuratedClassifier{}
	}

	index := make(map[string]int)
	ranks := make([]CityRank, 0)
	for _, d := range donations {
		city := classifier.Classify(d.PickupAddress)
		if city == "" {
			continue
		}
		i, ok := index[city]
		if !ok {
			i = len(ranks)
			index[city] = i
			ranks = append(ranks, CityRank{Name: city})
		}
		ranks[i].Donations++
		ranks[i].Meals = ranks[i].Donations * mealsPerDonation
	}

	sort.SliceStable(ranks, func(a, b int) bool { return ranks[a].Donations > ranks[b].Donations })
	return truncate(ranks, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// GetDashboard builds the landing view for the user's role.
func (s *StatsService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	ctx = ensuredContext(ctx)

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	switch user.Role {
	case models.RoleDonor:
		own, err := s.donations.ListDonorDonations(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: user.Role, Donor: s.donorDashboard(own)}, nil
	case models.RoleNGO:
		nearby, err := s.donations.ListAvailableDonations(ctx, ListAvailableOptions{
			Near:  user.Location,
			Limit: dashboardNearbyLimit,
		})
		if err != nil {
			return nil, err
		}
		if nearby == nil {
			nearby = []models.Donation{}
		}
		return &Dashboard{Role: user.Role, NGO: &NGODashboard{
			ActiveDonations: len(nearby),
			NearbyDonations: nearby,
		}}, nil
	default:
		return nil, ErrRoleNotPermitted
	}
}

func (s *StatsService) donorDashboard(own []models.Donation) *DonorDashboard {
	view := &DonorDashboard{TotalDonations: len(own), RecentDonations: truncate(own, dashboardRecentLimit)}
	if view.RecentDonations == nil {
		view.RecentDonations = []models.Donation{}
	}

	completed := 0
	for _, d := range own {
		switch d.Status {
		case models.DonationAvailable:
			view.ActiveDonations++
		case models.DonationClaimed:
			view.ClaimedDonations++
		case models.DonationCompleted:
			completed++
		}
	}
	view.PeopleHelped = completed * s.cfg.MealsPerDonation
	return view
}
