package handler

import (
	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// --- Request → Service input ---

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      domain.Role(req.Role),
	}
}

func toUserPatch(req updateUserRequest) ports.UserPatch {
	patch := ports.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}
	return patch
}

func toMePatch(req updateMeRequest) ports.UserPatch {
	return ports.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
}

func toTitleInput(req createTitleRequest) ports.TitleInput {
	in := ports.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		GenreSlugs:  req.Genre,
	}
	if req.Category != "" {
		category := req.Category
		in.CategorySlug = &category
	}
	return in
}

func toTitlePatch(req updateTitleRequest) ports.TitlePatch {
	return ports.TitlePatch{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		GenreSlugs:   req.Genre,
		CategorySlug: req.Category,
	}
}

func toReviewPatch(req updateReviewRequest) ports.ReviewPatch {
	return ports.ReviewPatch{Text: req.Text, Score: req.Score}
}
