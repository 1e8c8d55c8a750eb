package utils

import "strconv"

const MaxPageLimit = 100

// PageParams normalizes page/limit query values the way every listing
// endpoint expects them.
func PageParams(pageRaw, limitRaw string, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(pageRaw)
	limit, _ = strconv.Atoi(limitRaw)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset
}

func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
