package mvp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/llenroc/mvpapi/common/model"
	modcommon "github.com/llenroc/mvpapi/modules/common"
	"github.com/llenroc/mvpapi/modules/mvp"
)

type mockMvpClient struct {
	getJSONFunc  func(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error
	getBytesFunc func(ctx context.Context, endpoint string, opts ...mvp.RequestOption) ([]byte, error)
	postJSONFunc func(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...mvp.RequestOption) error
	putFunc      func(ctx context.Context, endpoint string, body interface{}, opts ...mvp.RequestOption) (bool, error)
	deleteFunc   func(ctx context.Context, endpoint string, opts ...mvp.RequestOption) (bool, error)
}

func (m *mockMvpClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error {
	return m.getJSONFunc(ctx, endpoint, entity, opts...)
}
func (m *mockMvpClient) GetBytes(ctx context.Context, endpoint string, opts ...mvp.RequestOption) ([]byte, error) {
	return m.getBytesFunc(ctx, endpoint, opts...)
}
func (m *mockMvpClient) PostJSON(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...mvp.RequestOption) error {
	return m.postJSONFunc(ctx, endpoint, body, entity, opts...)
}
func (m *mockMvpClient) Put(ctx context.Context, endpoint string, body interface{}, opts ...mvp.RequestOption) (bool, error) {
	return m.putFunc(ctx, endpoint, body, opts...)
}
func (m *mockMvpClient) Delete(ctx context.Context, endpoint string, opts ...mvp.RequestOption) (bool, error) {
	return m.deleteFunc(ctx, endpoint, opts...)
}
func (m *mockMvpClient) Stats() mvp.CallStats { return mvp.CallStats{} }

type mapCache struct {
	store map[string][]byte
}

func (c *mapCache) Get(key string) ([]byte, bool) {
	val, ok := c.store[key]
	return val, ok
}
func (c *mapCache) Set(key string, value []byte, _ time.Duration) {
	c.store[key] = value
}
func (c *mapCache) Delete(key string) {
	delete(c.store, key)
}

func TestMvpService_GetCurrentProfile(t *testing.T) {
	mClient := &mockMvpClient{
		getJSONFunc: func(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error {
			if endpoint != "profile" {
				return errors.New("unexpected endpoint " + endpoint)
			}
			return json.Unmarshal([]byte(`{"mvpId":"42","fullName":"Jan Tester"}`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	profile, err := svc.GetCurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.MvpID != "42" || profile.FullName != "Jan Tester" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestMvpService_GetContributions_EndpointFormat(t *testing.T) {
	var gotEndpoint string
	mClient := &mockMvpClient{
		getJSONFunc: func(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error {
			gotEndpoint = endpoint
			return json.Unmarshal([]byte(`{"contributions":[],"totalContributions":0,"pagingIndex":0}`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	if _, err := svc.GetContributions(context.Background(), 10, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEndpoint != "contributions/10/25" {
		t.Errorf("expected paged endpoint, got %q", gotEndpoint)
	}
}

func TestMvpService_SubmitContribution(t *testing.T) {
	mClient := &mockMvpClient{
		postJSONFunc: func(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...mvp.RequestOption) error {
			if endpoint != "contributions" {
				return errors.New("unexpected endpoint " + endpoint)
			}
			submitted, ok := body.(*model.Contribution)
			if !ok || submitted.Title != "Meetup talk" {
				return errors.New("unexpected body")
			}
			return json.Unmarshal([]byte(`{"contributionId":7,"title":"Meetup talk"}`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	stored, err := svc.SubmitContribution(context.Background(), &model.Contribution{Title: "Meetup talk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ContributionID != 7 {
		t.Errorf("expected server-assigned ID, got %+v", stored)
	}
}

func TestMvpService_DeleteContribution_Endpoint(t *testing.T) {
	var gotEndpoint string
	mClient := &mockMvpClient{
		deleteFunc: func(ctx context.Context, endpoint string, opts ...mvp.RequestOption) (bool, error) {
			gotEndpoint = endpoint
			return true, nil
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	ok, err := svc.DeleteContribution(context.Background(), 42)
	if err != nil || !ok {
		t.Fatalf("unexpected result: %v %v", ok, err)
	}
	if gotEndpoint != "contributions?id=42" {
		t.Errorf("expected id query endpoint, got %q", gotEndpoint)
	}
}

func TestMvpService_GetContributionTypes_Caching(t *testing.T) {
	fetches := 0
	mClient := &mockMvpClient{
		getBytesFunc: func(ctx context.Context, endpoint string, opts ...mvp.RequestOption) ([]byte, error) {
			fetches++
			return []byte(`[{"id":"t1","name":"Speaking"}]`), nil
		},
	}
	svc := mvp.NewMvpService(mClient, &mapCache{store: make(map[string][]byte)})

	for i := 0; i < 2; i++ {
		types, err := svc.GetContributionTypes(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(types) != 1 || types[0].Name != "Speaking" {
			t.Errorf("unexpected types: %+v", types)
		}
	}
	if fetches != 1 {
		t.Errorf("expected second call served from cache, got %d fetches", fetches)
	}
}

func TestMvpService_GetContributionTypes_CacheStore(t *testing.T) {
	fetches := 0
	mClient := &mockMvpClient{
		getBytesFunc: func(ctx context.Context, endpoint string, opts ...mvp.RequestOption) ([]byte, error) {
			fetches++
			return []byte(`[{"id":"t1","name":"Speaking"}]`), nil
		},
	}
	// the real go-cache backed store, not a test fake
	svc := mvp.NewMvpService(mClient, modcommon.NewCacheStore())

	for i := 0; i < 2; i++ {
		types, err := svc.GetContributionTypes(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(types) != 1 || types[0].Name != "Speaking" {
			t.Errorf("unexpected types: %+v", types)
		}
	}
	if fetches != 1 {
		t.Errorf("expected second call served from the store, got %d fetches", fetches)
	}
}

func TestMvpService_GetAwardConsiderationQuestions(t *testing.T) {
	mClient := &mockMvpClient{
		getJSONFunc: func(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error {
			if endpoint != "awardconsideration/getcurrentquestions" {
				return errors.New("unexpected endpoint " + endpoint)
			}
			return json.Unmarshal([]byte(`[{"awardQuestionId":"q1","questionContent":"What was your impact?","isRequired":true,"sequence":1}]`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	questions, err := svc.GetAwardConsiderationQuestions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0].AwardQuestionID != "q1" || !questions[0].IsRequired {
		t.Errorf("unexpected questions: %+v", questions)
	}
}

func TestMvpService_SaveAwardConsiderationAnswers(t *testing.T) {
	mClient := &mockMvpClient{
		postJSONFunc: func(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...mvp.RequestOption) error {
			if endpoint != "awardconsideration/saveanswers" {
				return errors.New("unexpected endpoint " + endpoint)
			}
			answers, ok := body.([]model.AwardAnswer)
			if !ok || len(answers) != 1 || answers[0].AwardQuestionID != "q1" {
				return errors.New("unexpected body")
			}
			return json.Unmarshal([]byte(`[{"awardQuestionId":"q1","answer":"Ran a meetup"}]`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	saved, err := svc.SaveAwardConsiderationAnswers(context.Background(), []model.AwardAnswer{
		{AwardQuestionID: "q1", Answer: "Ran a meetup"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 1 || saved[0].Answer != "Ran a meetup" {
		t.Errorf("unexpected saved answers: %+v", saved)
	}
}

func TestMvpService_SubmitAwardConsiderationAnswers(t *testing.T) {
	var gotEndpoint string
	mClient := &mockMvpClient{
		postJSONFunc: func(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...mvp.RequestOption) error {
			gotEndpoint = endpoint
			return nil
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	ok, err := svc.SubmitAwardConsiderationAnswers(context.Background())
	if err != nil || !ok {
		t.Fatalf("unexpected result: %v %v", ok, err)
	}
	if gotEndpoint != "awardconsideration/submitanswers" {
		t.Errorf("expected submit endpoint, got %q", gotEndpoint)
	}
}

func TestMvpService_GetProfileImage(t *testing.T) {
	mClient := &mockMvpClient{
		getJSONFunc: func(ctx context.Context, endpoint string, entity interface{}, opts ...mvp.RequestOption) error {
			if endpoint != "profile/photo" {
				return errors.New("unexpected endpoint " + endpoint)
			}
			return json.Unmarshal([]byte(`"aGVsbG8="`), entity)
		},
	}
	svc := mvp.NewMvpService(mClient, nil)

	image, err := svc.GetProfileImage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image != "aGVsbG8=" {
		t.Errorf("unexpected image payload: %q", image)
	}
}
