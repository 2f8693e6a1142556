package recipe

import (
	"net/http"
	"strings"

	"recipe-lens/internal/core/ingredient"
	recipeService "recipe-lens/internal/core/recipe"
	"recipe-lens/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食材辨識與食譜相關的 HTTP 處理程序
type Handler struct {
	service   *recipeService.Service
	maxImages int
	debug     bool
}

// NewHandler 創建新的處理程序，debug 時生成結果會附上提示詞
func NewHandler(service *recipeService.Service, maxImages int, debug bool) *Handler {
	return &Handler{
		service:   service,
		maxImages: maxImages,
		debug:     debug,
	}
}

// DetectRequest 食材辨識請求，可傳單張 image 或多張 images
type DetectRequest struct {
	Image  string   `json:"image,omitempty"`
	Images []string `json:"images,omitempty"`
}

// all 合併單張與多張圖片
func (r DetectRequest) all() []string {
	images := make([]string, 0, len(r.Images)+1)
	if strings.TrimSpace(r.Image) != "" {
		images = append(images, r.Image)
	}
	return append(images, r.Images...)
}

// ClassifyRequest 詞彙分類請求
type ClassifyRequest struct {
	Terms []string `json:"terms" binding:"required"`
}

// ClassifiedTerm 單一詞彙的分類結果
type ClassifiedTerm struct {
	Term   string `json:"term"`
	IsFood bool   `json:"is_food"`
}

// ClassifyResponse 詞彙分類結果
type ClassifyResponse struct {
	Results     []ClassifiedTerm `json:"results"`
	Ingredients []string         `json:"ingredients"`
}

// NormalizeRequest 模型輸出正規化請求
type NormalizeRequest struct {
	Text string `json:"text"`
}

// PromptResponse 提示詞預覽
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// Options 回傳常備食材、料理風格與飲食限制目錄
func (h *Handler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, recipeService.Catalog())
}

// DetectIngredients 從圖片辨識食材
func (h *Handler) DetectIngredients(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		common.WriteError(c, common.NewValidationError("Invalid request format"))
		return
	}

	images := req.all()
	if h.maxImages > 0 && len(images) > h.maxImages {
		common.WriteError(c, common.NewValidationError("Too many images in one request"))
		return
	}

	common.LogInfo("開始辨識食材",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("images", len(images)),
		zap.Strings("image_types", imageKinds(images)),
	)

	result := h.service.DetectIngredients(c.Request.Context(), images)
	c.JSON(http.StatusOK, result)
}

// ClassifyTerms 判斷詞彙是否為食材
func (h *Handler) ClassifyTerms(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.NewValidationError("Invalid request format"))
		return
	}

	resp := ClassifyResponse{
		Results:     make([]ClassifiedTerm, 0, len(req.Terms)),
		Ingredients: make([]string, 0),
	}
	found := make([][]string, 0, len(req.Terms))
	for _, term := range req.Terms {
		isFood := ingredient.IsFoodTerm(term)
		resp.Results = append(resp.Results, ClassifiedTerm{Term: term, IsFood: isFood})
		if isFood {
			found = append(found, []string{ingredient.Capitalize(strings.TrimSpace(term))})
		}
	}
	resp.Ingredients = ingredient.Merge(found...)

	c.JSON(http.StatusOK, resp)
}

// PreviewPrompt 回傳將送往模型的提示詞
func (h *Handler) PreviewPrompt(c *gin.Context) {
	var req recipeService.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.NewValidationError("Invalid request format"))
		return
	}
	c.JSON(http.StatusOK, PromptResponse{Prompt: h.service.Preview(req)})
}

// Generate 生成食譜
func (h *Handler) Generate(c *gin.Context) {
	var req recipeService.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		common.WriteError(c, common.NewValidationError("Invalid request format"))
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("detected", len(req.DetectedIngredients)),
		zap.Int("staples", len(req.Staples)),
		zap.Strings("cuisines", req.Cuisines),
		zap.Strings("dietary", req.Dietary),
		zap.Bool("regenerate", req.Regenerate),
	)

	gen, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	if !h.debug {
		gen.Prompt = ""
	}
	c.JSON(http.StatusOK, gen)
}

// Normalize 正規化模型輸出
func (h *Handler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.NewValidationError("Invalid request format"))
		return
	}
	c.JSON(http.StatusOK, recipeService.Normalize(req.Text))
}

// ListRecipes 列出已存食譜
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.service.ListRecipes(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe 取得單一已存食譜
func (h *Handler) GetRecipe(c *gin.Context) {
	r, err := h.service.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// SaveRecipe 儲存食譜草稿，欄位型別需完整
func (h *Handler) SaveRecipe(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		common.WriteError(c, common.ErrRequestTooLarge.Wrap(err))
		return
	}

	draft, err := recipeService.DraftFromJSON(string(body))
	if err != nil {
		common.WriteError(c, err)
		return
	}

	saved, err := h.service.SaveRecipe(c.Request.Context(), *draft)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteRecipe 刪除已存食譜
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.service.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		common.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearRecipes 清除所有已存食譜
func (h *Handler) ClearRecipes(c *gin.Context) {
	if err := h.service.ClearRecipes(c.Request.Context()); err != nil {
		common.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
