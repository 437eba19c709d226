package service

import (
	"Perish/dao"
	"Perish/models"
	"Perish/pkg/taskqueue"
	"context"
	"sort"
	"sync"
	"time"
)

type voteKey struct {
	imageID uint64
	userID  uint64
}

// memDB 内存版存储，行为对齐 MySQL 的约束
type memDB struct {
	mu         sync.Mutex
	now        func() time.Time
	notReady   bool
	images     map[uint64]*models.Image
	likes      map[voteKey]bool
	superlikes map[voteKey]time.Time

	findRecentErr error
	findRecentN   int
	likedCalls    int
	superCalls    int
}

func newMemDB(now func() time.Time, images ...*models.Image) *memDB {
	db := &memDB{
		now:        now,
		images:     make(map[uint64]*models.Image),
		likes:      make(map[voteKey]bool),
		superlikes: make(map[voteKey]time.Time),
	}
	for _, img := range images {
		db.images[img.ID] = img
	}
	return db
}

func (db *memDB) live(id uint64) *models.Image {
	img, ok := db.images[id]
	if !ok || img.DeletedAt.Valid {
		return nil
	}
	return img
}

func clone(img *models.Image) *models.Image {
	cp := *img
	return &cp
}

func sortByCreatedDesc(images []*models.Image) {
	sort.SliceStable(images, func(i, j int) bool {
		if !images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].CreatedAt.After(images[j].CreatedAt)
		}
		return images[i].ID > images[j].ID
	})
}

func (db *memDB) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(db.images))
	for id := range db.images {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memImages struct{ db *memDB }

func (m memImages) Ready() bool { return !m.db.notReady }

func (m memImages) GetByID(_ context.Context, id uint64) (*models.Image, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	img := m.db.live(id)
	if img == nil {
		return nil, nil
	}
	return clone(img), nil
}

func (m memImages) FindByIDs(_ context.Context, ids []uint64) ([]*models.Image, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]*models.Image, 0, len(ids))
	for _, id := range ids {
		if img := m.db.live(id); img != nil {
			out = append(out, clone(img))
		}
	}
	return out, nil
}

func (m memImages) FindImmortal(_ context.Context, category string, limit int) ([]*models.Image, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.Image
	for _, id := range m.db.sortedIDs() {
		img := m.db.live(id)
		if img == nil || !img.IsImmortal || (category != "" && img.Category != category) {
			continue
		}
		out = append(out, clone(img))
	}
	sortByCreatedDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memImages) FindRecent(_ context.Context, q dao.RecentQuery) ([]*models.Image, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.findRecentN++
	if m.db.findRecentErr != nil {
		return nil, m.db.findRecentErr
	}
	var out []*models.Image
	for _, id := range m.db.sortedIDs() {
		img := m.db.live(id)
		if img == nil {
			continue
		}
		if q.ImmortalOnly && !img.IsImmortal {
			continue
		}
		if !q.ImmortalOnly && !q.AliveAt.IsZero() && !img.IsImmortal && !img.ExpiresAt.After(q.AliveAt) {
			continue
		}
		if q.Category != "" && img.Category != q.Category {
			continue
		}
		if !q.Before.IsZero() && !img.CreatedAt.Before(q.Before) &&
			!(img.CreatedAt.Equal(q.Before) && img.ID < q.BeforeID) {
			continue
		}
		out = append(out, clone(img))
	}
	sortByCreatedDesc(out)
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FindHallOfFame 故意不排序，排序由服务层负责
func (m memImages) FindHallOfFame(_ context.Context, category string, limit int) ([]*models.Image, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.Image
	for _, id := range m.db.sortedIDs() {
		img := m.db.live(id)
		if img == nil || !img.IsHallOfFame || (category != "" && img.Category != category) {
			continue
		}
		out = append(out, clone(img))
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memLikes struct{ db *memDB }

func (m memLikes) Exists(_ context.Context, userID, imageID uint64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.db.likes[voteKey{imageID, userID}], nil
}

// Create 模拟唯一键和自投触发器
func (m memLikes) Create(_ context.Context, userID, imageID uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	img := m.db.live(imageID)
	if img == nil {
		return dao.ErrVoteConstraint
	}
	if img.UserID == userID {
		return dao.ErrSelfVote
	}
	key := voteKey{imageID, userID}
	if m.db.likes[key] {
		return dao.ErrDuplicateVote
	}
	m.db.likes[key] = true
	img.LikeCount++
	return nil
}

func (m memLikes) Delete(_ context.Context, userID, imageID uint64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	key := voteKey{imageID, userID}
	if !m.db.likes[key] {
		return false, nil
	}
	delete(m.db.likes, key)
	if img := m.db.images[imageID]; img != nil && img.LikeCount > 0 {
		img.LikeCount--
	}
	return true, nil
}

func (m memLikes) LikedAmong(_ context.Context, userID uint64, ids []uint64) (map[uint64]bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.likedCalls++
	out := make(map[uint64]bool)
	for _, id := range ids {
		if m.db.likes[voteKey{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

type memSuperlikes struct{ db *memDB }

func (m memSuperlikes) Exists(_ context.Context, userID, imageID uint64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	_, ok := m.db.superlikes[voteKey{imageID, userID}]
	return ok, nil
}

func (m memSuperlikes) Create(_ context.Context, userID, imageID uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	img := m.db.live(imageID)
	if img == nil {
		return dao.ErrVoteConstraint
	}
	if img.UserID == userID {
		return dao.ErrSelfVote
	}
	key := voteKey{imageID, userID}
	if _, ok := m.db.superlikes[key]; ok {
		return dao.ErrDuplicateVote
	}
	m.db.superlikes[key] = m.db.now().UTC()
	img.SuperlikeCount++
	return nil
}

func (m memSuperlikes) CountBetween(_ context.Context, userID uint64, from, to time.Time) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for key, at := range m.db.superlikes {
		if key.userID == userID && !at.Before(from) && at.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m memSuperlikes) SuperlikedAmong(_ context.Context, userID uint64, ids []uint64) (map[uint64]bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.superCalls++
	out := make(map[uint64]bool)
	for _, id := range ids {
		if _, ok := m.db.superlikes[voteKey{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeRanking struct {
	cohort    []models.CohortRanking
	cohortErr error
	hof       []models.HallOfFameRanking
	hofErr    error
	// block 非 nil 时阻塞到关闭
	block chan struct{}
}

func (f *fakeRanking) CurrentCohort(ctx context.Context) ([]models.CohortRanking, error) {
	if f.block != nil {
		<-f.block
	}
	return f.cohort, f.cohortErr
}

func (f *fakeRanking) HallOfFame(ctx context.Context, limit int) ([]models.HallOfFameRanking, error) {
	if f.block != nil {
		<-f.block
	}
	rows := f.hof
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, f.hofErr
}

type staticSettings struct{ s *Settings }

func (f staticSettings) Snapshot(context.Context) *Settings { return f.s }

func (f staticSettings) Cached() *Settings { return f.s }

func (f staticSettings) LoadFeedSettings(context.Context) FeedSettings { return f.s.Feed }

func (f staticSettings) LoadSuperlikeSettings(context.Context) SuperlikeSettings {
	return f.s.Superlike
}

type recordQueue struct {
	mu    sync.Mutex
	tasks []taskqueue.Task
}

func (q *recordQueue) Enqueue(t taskqueue.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return true
}

func (q *recordQueue) kinds(kind string) []taskqueue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []taskqueue.Task
	for _, t := range q.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// mortal 当前存活的普通图片
func mortal(id, owner uint64, url string, likes int64, created time.Time) *models.Image {
	return &models.Image{
		ID:        id,
		UserID:    owner,
		URL:       url,
		Category:  "art",
		LikeCount: likes,
		CreatedAt: created,
		ExpiresAt: created.Add(models.Lifetime),
	}
}

func immortal(id, owner uint64, url string, created time.Time) *models.Image {
	return &models.Image{
		ID:         id,
		UserID:     owner,
		URL:        url,
		Category:   "art",
		IsImmortal: true,
		CreatedAt:  created,
	}
}
