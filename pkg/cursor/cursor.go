// Package cursor 信息流分页游标。
//
// 游标是一个带类型的联合体：偏移量、时间戳或排名位置，并且绑定到具体的信息流，
// 对外序列化为 hashids 编码的不透明字符串，不同信息流之间的游标不能混用。
package cursor

import (
	"errors"
	"time"

	"github.com/speps/go-hashids/v2"
)

type Kind int64

const (
	KindOffset    Kind = 1 // 排名合并列表上的偏移
	KindTimestamp Kind = 2 // (created_at, id) 边界，created_at 为 UnixNano
	KindRank      Kind = 3 // 名人堂排名位置
)

type Feed int64

const (
	FeedRecent     Feed = 1
	FeedImmortal   Feed = 2
	FeedHallOfFame Feed = 3
)

var (
	ErrMalformed    = errors.New("malformed cursor")
	ErrFeedMismatch = errors.New("cursor belongs to another feed")
)

type Cursor struct {
	Feed  Feed
	Kind  Kind
	Value int64
	// ID 时间戳游标的同刻去重键，created_at 相同时按 id 倒序继续
	ID uint64
	// Fallback 0 表示实时链路签发；非 0 为兜底目录签发，值是降级原因编号
	Fallback int64
}

func Offset(feed Feed, n int) Cursor {
	return Cursor{Feed: feed, Kind: KindOffset, Value: int64(n)}
}

// Timestamp 停在 (t, id) 这一行，下一页从它之后开始
func Timestamp(feed Feed, t time.Time, id uint64) Cursor {
	return Cursor{Feed: feed, Kind: KindTimestamp, Value: t.UnixNano(), ID: id}
}

func Rank(feed Feed, position int) Cursor {
	return Cursor{Feed: feed, Kind: KindRank, Value: int64(position)}
}

func (c Cursor) Time() time.Time {
	return time.Unix(0, c.Value).UTC()
}

// Passed 按 created_at、id 倒序，(t, id) 是否排在游标之后
func (c Cursor) Passed(t time.Time, id uint64) bool {
	at := c.Time()
	if !t.Equal(at) {
		return t.Before(at)
	}
	return id < c.ID
}

func (c Cursor) Int() int {
	return int(c.Value)
}

func (c Cursor) WithFallback(reason int64) Cursor {
	c.Fallback = reason
	return c
}

type Codec struct {
	h *hashids.HashID
}

func NewCodec(salt string) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 10
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(cur Cursor) string {
	fallback := cur.Fallback
	if fallback < 0 {
		fallback = 0
	}
	value := cur.Value
	if value < 0 {
		value = 0
	}
	token, err := c.h.EncodeInt64([]int64{int64(cur.Feed), int64(cur.Kind), value, fallback, int64(cur.ID)})
	if err != nil {
		return ""
	}
	return token
}

// Decode 解析游标并校验它属于 feed
func (c *Codec) Decode(token string, feed Feed) (Cursor, error) {
	nums, err := c.h.DecodeInt64WithError(token)
	if err != nil || len(nums) != 5 || nums[4] < 0 {
		return Cursor{}, ErrMalformed
	}
	cur := Cursor{
		Feed:     Feed(nums[0]),
		Kind:     Kind(nums[1]),
		Value:    nums[2],
		Fallback: nums[3],
		ID:       uint64(nums[4]),
	}
	if cur.Kind < KindOffset || cur.Kind > KindRank {
		return Cursor{}, ErrMalformed
	}
	if cur.Feed != feed {
		return Cursor{}, ErrFeedMismatch
	}
	return cur, nil
}
