package recipe

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"recipe-lens/internal/infrastructure/kv"
	"recipe-lens/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// StorageKey 已存食譜清單的鍵
	StorageKey = "SAVED_RECIPES"
	// DefaultTitle 標題空白時的預設值
	DefaultTitle = "Cookbook"
)

// Store 已存食譜，整份清單以單一 JSON 陣列保存
//
// 讀改寫在同一行程內以互斥鎖串行化，多行程共用儲存時以最後寫入為準。
type Store struct {
	kv  kv.Store
	mu  sync.Mutex
	ids func() string
}

// NewStore 創建已存食譜儲存
func NewStore(store kv.Store) *Store {
	return &Store{
		kv:  store,
		ids: common.GenerateUUID,
	}
}

// List 依最新優先回傳所有已存食譜
func (s *Store) List(ctx context.Context) ([]SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save 新增食譜並置於清單最前
func (s *Store) Save(ctx context.Context, draft Draft) (*SavedRecipe, error) {
	text, err := common.ToIndentedJSON(withArrays(draft))
	if err != nil {
		return nil, common.ErrStorageError.Wrap(fmt.Errorf("failed to encode recipe: %w", err))
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = DefaultTitle
	}

	saved := SavedRecipe{
		ID:    s.ids(),
		Title: title,
		Text:  text,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	recipes = append([]SavedRecipe{saved}, recipes...)
	if err := s.persist(ctx, recipes); err != nil {
		return nil, err
	}

	common.LogInfo("食譜已儲存",
		zap.String("id", saved.ID),
		zap.String("title", saved.Title),
		zap.Int("total", len(recipes)),
	)
	return &saved, nil
}

// Get 依 ID 取得食譜
func (s *Store) Get(ctx context.Context, id string) (*SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], nil
		}
	}
	return nil, common.ErrRecipeNotFound
}

// Delete 依 ID 刪除食譜
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]SavedRecipe, 0, len(recipes))
	for _, r := range recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recipes) {
		return common.ErrRecipeNotFound
	}

	return s.persist(ctx, kept)
}

// Clear 刪除所有已存食譜
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, StorageKey); err != nil {
		return common.ErrStorageError.Wrap(err)
	}
	common.LogInfo("已清除所有食譜")
	return nil
}

func (s *Store) load(ctx context.Context) ([]SavedRecipe, error) {
	data, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, common.ErrStorageError.Wrap(err)
	}
	if !found {
		return []SavedRecipe{}, nil
	}

	var recipes []SavedRecipe
	if err := common.ParseJSON(data, &recipes); err != nil {
		return nil, common.ErrStorageError.Wrap(fmt.Errorf("corrupt saved recipes: %w", err))
	}
	if recipes == nil {
		recipes = []SavedRecipe{}
	}
	return recipes, nil
}

func (s *Store) persist(ctx context.Context, recipes []SavedRecipe) error {
	data, err := common.ToJSON(recipes)
	if err != nil {
		return common.ErrStorageError.Wrap(err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		return common.ErrStorageError.Wrap(err)
	}
	return nil
}

// withArrays 確保序列化時陣列欄位為 [] 而非 null
func withArrays(d Draft) Draft {
	if d.Ingredients == nil {
		d.Ingredients = []string{}
	}
	if d.Instructions == nil {
		d.Instructions = []string{}
	}
	return d
}
