package utils

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"context"
	"net/http"
	"strconv"
)

func BuildPaginationRequest(r *http.Request) *requests.Pagination {
	pageStr := r.URL.Query().Get("page")
	pageSizeStr := r.URL.Query().Get("page_size")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		page = 1
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return &requests.Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

func GetAuthClaims(ctx context.Context) (*JWTClaims, bool) {
	claims, ok := ctx.Value(constvars.CONTEXT_AUTH_CLAIMS_KEY).(*JWTClaims)
	return claims, ok && claims != nil
}

func SetAuthClaims(ctx context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(ctx, constvars.CONTEXT_AUTH_CLAIMS_KEY, claims)
}
