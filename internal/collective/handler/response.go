package handler

import (
	"opencollective/internal/collective/models"
	"opencollective/internal/collective/service"
	id "opencollective/pkg/domain"
)

type userResponse struct {
	ID           id.UserID       `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	CollectiveID id.CollectiveID `json:"collective_id"`
	Created      bool            `json:"created"`
}

type warningResponse struct {
	Effect  string `json:"effect"`
	Message string `json:"message"`
}

type createResponse struct {
	Collective *models.Collective `json:"collective"`
	Host       *models.Collective `json:"host,omitempty"`
	User       userResponse       `json:"user"`
	Strategy   string             `json:"strategy"`
	Warnings   []warningResponse  `json:"warnings"`
}

func toCreateResponse(result *service.CreateResult) createResponse {
	resp := createResponse{
		Collective: result.Collective,
		Host:       result.Host,
		Strategy:   result.Strategy,
		Warnings:   make([]warningResponse, 0, len(result.Warnings)),
	}
	if result.Actor != nil {
		resp.User = userResponse{
			ID:           result.Actor.ID,
			Email:        result.Actor.Email,
			Name:         result.Actor.Name,
			CollectiveID: result.Actor.CollectiveID,
			Created:      result.ActorCreated,
		}
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warningResponse{
			Effect:  w.Effect,
			Message: "post-commit step did not complete",
		})
	}
	return resp
}
