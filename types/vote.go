package types

import "time"

type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type SuperlikeResponse struct {
	Superliked     bool      `json:"superliked"`
	SuperlikeCount int64     `json:"superlikeCount"`
	ResetAt        time.Time `json:"resetAt"`
}
