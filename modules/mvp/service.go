package mvp

import (
	"context"
	"fmt"
	"time"

	"github.com/llenroc/mvpapi/common"
	"github.com/llenroc/mvpapi/common/model"
)

// MvpService is a higher-level interface for reading and manipulating the
// signed-in MVP's data. Each method maps to one API endpoint.
type MvpService interface {
	GetCurrentProfile(ctx context.Context) (*model.Profile, error)
	GetProfile(ctx context.Context, mvpID string) (*model.Profile, error)
	GetProfileImage(ctx context.Context) (string, error)

	GetContributions(ctx context.Context, offset, limit int) (*model.ContributionList, error)
	GetContribution(ctx context.Context, contributionID int64) (*model.Contribution, error)
	SubmitContribution(ctx context.Context, contribution *model.Contribution) (*model.Contribution, error)
	UpdateContribution(ctx context.Context, contribution *model.Contribution) (bool, error)
	DeleteContribution(ctx context.Context, contributionID int64) (bool, error)

	// Reference data, cached because it changes at most once per award cycle.
	GetContributionTypes(ctx context.Context) ([]model.ContributionType, error)
	GetContributionAreas(ctx context.Context) ([]model.ContributionAreaCategory, error)

	GetOnlineIdentities(ctx context.Context) ([]model.OnlineIdentity, error)
	SubmitOnlineIdentity(ctx context.Context, identity *model.OnlineIdentity) (*model.OnlineIdentity, error)
	DeleteOnlineIdentity(ctx context.Context, privateSiteID int) (bool, error)

	GetSharingPreferences(ctx context.Context) ([]model.SharingPreference, error)

	GetAwardConsiderationQuestions(ctx context.Context) ([]model.AwardQuestion, error)
	SaveAwardConsiderationAnswers(ctx context.Context, answers []model.AwardAnswer) ([]model.AwardAnswer, error)
	SubmitAwardConsiderationAnswers(ctx context.Context) (bool, error)
}

// How long to keep contribution types/areas. They only move when Microsoft
// reshuffles award categories.
const referenceCacheExpiration = 24 * time.Hour

// mvpService is the concrete implementation that uses MvpClient.
type mvpService struct {
	mvpClient MvpClient
	cache     common.CacheRepository
}

// NewMvpService constructs an MvpService. cache may be nil to disable
// reference-data caching.
func NewMvpService(client MvpClient, cache common.CacheRepository) MvpService {
	return &mvpService{
		mvpClient: client,
		cache:     cache,
	}
}

func (s *mvpService) GetCurrentProfile(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := s.mvpClient.GetJSON(ctx, "profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *mvpService) GetProfile(ctx context.Context, mvpID string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.mvpClient.GetJSON(ctx, "profile/"+mvpID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileImage returns the profile photo as a base64 string, which is how
// the API ships it.
func (s *mvpService) GetProfileImage(ctx context.Context) (string, error) {
	var image string
	if err := s.mvpClient.GetJSON(ctx, "profile/photo", &image); err != nil {
		return "", err
	}
	return image, nil
}

func (s *mvpService) GetContributions(ctx context.Context, offset, limit int) (*model.ContributionList, error) {
	endpoint := fmt.Sprintf("contributions/%d/%d", offset, limit)
	var list model.ContributionList
	if err := s.mvpClient.GetJSON(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *mvpService) GetContribution(ctx context.Context, contributionID int64) (*model.Contribution, error) {
	endpoint := fmt.Sprintf("contributions/%d", contributionID)
	var contribution model.Contribution
	if err := s.mvpClient.GetJSON(ctx, endpoint, &contribution); err != nil {
		return nil, err
	}
	return &contribution, nil
}

// SubmitContribution posts a new contribution and returns the stored copy,
// including the server-assigned contribution ID.
func (s *mvpService) SubmitContribution(ctx context.Context, contribution *model.Contribution) (*model.Contribution, error) {
	var stored model.Contribution
	if err := s.mvpClient.PostJSON(ctx, "contributions", contribution, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *mvpService) UpdateContribution(ctx context.Context, contribution *model.Contribution) (bool, error) {
	return s.mvpClient.Put(ctx, "contributions", contribution)
}

func (s *mvpService) DeleteContribution(ctx context.Context, contributionID int64) (bool, error) {
	endpoint := fmt.Sprintf("contributions?id=%d", contributionID)
	return s.mvpClient.Delete(ctx, endpoint)
}

func (s *mvpService) GetContributionTypes(ctx context.Context) ([]model.ContributionType, error) {
	var types []model.ContributionType
	if err := s.getCachedJSON(ctx, "contributions/contributiontypes", "mvp:contributiontypes", &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *mvpService) GetContributionAreas(ctx context.Context) ([]model.ContributionAreaCategory, error) {
	var areas []model.ContributionAreaCategory
	if err := s.getCachedJSON(ctx, "contributions/contributionareas", "mvp:contributionareas", &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (s *mvpService) GetOnlineIdentities(ctx context.Context) ([]model.OnlineIdentity, error) {
	var identities []model.OnlineIdentity
	if err := s.mvpClient.GetJSON(ctx, "onlineidentities", &identities); err != nil {
		return nil, err
	}
	return identities, nil
}

func (s *mvpService) SubmitOnlineIdentity(ctx context.Context, identity *model.OnlineIdentity) (*model.OnlineIdentity, error) {
	var stored model.OnlineIdentity
	if err := s.mvpClient.PostJSON(ctx, "onlineidentities", identity, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *mvpService) DeleteOnlineIdentity(ctx context.Context, privateSiteID int) (bool, error) {
	endpoint := fmt.Sprintf("onlineidentities?id=%d", privateSiteID)
	return s.mvpClient.Delete(ctx, endpoint)
}

func (s *mvpService) GetSharingPreferences(ctx context.Context) ([]model.SharingPreference, error) {
	var prefs []model.SharingPreference
	if err := s.mvpClient.GetJSON(ctx, "profile/sharingpreferences", &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *mvpService) GetAwardConsiderationQuestions(ctx context.Context) ([]model.AwardQuestion, error) {
	var questions []model.AwardQuestion
	if err := s.mvpClient.GetJSON(ctx, "awardconsideration/getcurrentquestions", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SaveAwardConsiderationAnswers stores draft answers and returns the saved
// copies. Answers stay editable until SubmitAwardConsiderationAnswers.
func (s *mvpService) SaveAwardConsiderationAnswers(ctx context.Context, answers []model.AwardAnswer) ([]model.AwardAnswer, error) {
	var saved []model.AwardAnswer
	if err := s.mvpClient.PostJSON(ctx, "awardconsideration/saveanswers", answers, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// SubmitAwardConsiderationAnswers finalizes the saved answers for the cycle.
func (s *mvpService) SubmitAwardConsiderationAnswers(ctx context.Context) (bool, error) {
	if err := s.mvpClient.PostJSON(ctx, "awardconsideration/submitanswers", nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// getCachedJSON serves reference data from the cache when possible, falling
// back to a live fetch and storing the raw bytes.
func (s *mvpService) getCachedJSON(ctx context.Context, endpoint, cacheKey string, entity interface{}) error {
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			if err := model.JSONUnmarshal(cached, entity); err == nil {
				return nil
			}
		}
	}

	data, err := s.mvpClient.GetBytes(ctx, endpoint)
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Set(cacheKey, data, referenceCacheExpiration)
	}
	return model.JSONUnmarshal(data, entity)
}
