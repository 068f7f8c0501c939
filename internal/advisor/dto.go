package advisor

import "time"

// SessionResponse is the outward-facing representation of an advisor session.
type SessionResponse struct {
	SessionID       string           `json:"sessionId"`
	Profile         Profile          `json:"profile"`
	Status          Status           `json:"status"`
	Recommendations []Recommendation `json:"recommendations"`
	CareerParagraph string           `json:"careerParagraph"`
	Roadmap         *Projection      `json:"roadmap,omitempty"`
	Error           string           `json:"error,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// SavedRoadmapResponse is the outward-facing representation of a saved roadmap.
type SavedRoadmapResponse struct {
	RoadmapID       string           `json:"roadmapId"`
	SessionID       string           `json:"sessionId"`
	Profile         Profile          `json:"profile"`
	Recommendations []Recommendation `json:"recommendations"`
	CareerParagraph string           `json:"careerParagraph"`
	Roadmap         Projection       `json:"roadmap"`
	StorageKey      string           `json:"storageKey"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// RoadmapSummary lists a saved roadmap without its generated content.
type RoadmapSummary struct {
	RoadmapID  string    `json:"roadmapId"`
	SessionID  string    `json:"sessionId"`
	Profile    Profile   `json:"profile"`
	StorageKey string    `json:"storageKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

type mentorResponse struct {
	RequestID  string `json:"requestId"`
	Kind       string `json:"kind"`
	Course     string `json:"course"`
	EnqueuedAt string `json:"enqueuedAt"`
}

func toSessionResponse(v SessionView) SessionResponse {
	resp := SessionResponse{
		SessionID:       v.ID,
		Profile:         v.Profile,
		Status:          v.Status,
		Recommendations: []Recommendation{},
		Error:           v.Error,
		UpdatedAt:       v.UpdatedAt,
	}
	if v.Result != nil {
		resp.Recommendations = v.Result.Recommendations
		resp.CareerParagraph = v.Result.CareerParagraph
		projection := Project(v.Result.Roadmap)
		resp.Roadmap = &projection
	}
	return resp
}

func toSavedRoadmapResponse(saved SavedRoadmap) SavedRoadmapResponse {
	return SavedRoadmapResponse{
		RoadmapID:       saved.ID,
		SessionID:       saved.SessionID,
		Profile:         saved.Profile,
		Recommendations: saved.Result.Recommendations,
		CareerParagraph: saved.Result.CareerParagraph,
		Roadmap:         Project(saved.Result.Roadmap),
		StorageKey:      saved.StorageKey,
		CreatedAt:       saved.CreatedAt,
	}
}

func toRoadmapSummary(saved SavedRoadmap) RoadmapSummary {
	return RoadmapSummary{
		RoadmapID:  saved.ID,
		SessionID:  saved.SessionID,
		Profile:    saved.Profile,
		StorageKey: saved.StorageKey,
		CreatedAt:  saved.CreatedAt,
	}
}
