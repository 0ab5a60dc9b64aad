package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/middleware"
	"PedagoPass/internal/service"
)

type PostHandler struct {
	responder
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService, log *slog.Logger, production bool) *PostHandler {
	return &PostHandler{responder: responder{log: log, production: production}, svc: svc}
}

type CreatePostReq struct {
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	CommunityID   uint64   `json:"communityId"`
	DestinationID uint64   `json:"destinationId"`
}

// CreatePost 创建帖子接口，multipart 时附带 media 文件
func (h *PostHandler) CreatePost(c *gin.Context) {
	in, closeFiles, ok := h.bindCreate(c)
	if !ok {
		return
	}
	defer closeFiles()

	post, err := h.svc.CreatePost(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *PostHandler) bindCreate(c *gin.Context) (service.CreatePostInput, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req CreatePostReq
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidParams(c)
			return service.CreatePostInput{}, noop, false
		}
		return service.CreatePostInput{
			Content:       req.Content,
			Tags:          req.Tags,
			CommunityID:   req.CommunityID,
			DestinationID: req.DestinationID,
		}, noop, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		invalidParams(c)
		return service.CreatePostInput{}, noop, false
	}
	in := service.CreatePostInput{
		Content: c.PostForm("content"),
		Tags:    splitTags(c.PostFormArray("tags")),
	}
	if v := c.PostForm("communityId"); v != "" {
		if in.CommunityID, err = strconv.ParseUint(v, 10, 64); err != nil {
			invalidParams(c)
			return service.CreatePostInput{}, noop, false
		}
	}
	if v := c.PostForm("destinationId"); v != "" {
		if in.DestinationID, err = strconv.ParseUint(v, 10, 64); err != nil {
			invalidParams(c)
			return service.CreatePostInput{}, noop, false
		}
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range form.File["media"] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			h.fail(c, err)
			return service.CreatePostInput{}, noop, false
		}
		opened = append(opened, f)
		in.Media = append(in.Media, service.MediaUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return in, closeAll, true
}

// splitTags 兼容重复字段与逗号分隔两种写法
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// ListPosts 分页列表，登录用户附带 liked 标记
func (h *PostHandler) ListPosts(c *gin.Context) {
	viewerID, _ := middleware.UserID(c)
	page, err := h.svc.ListPosts(c.Request.Context(), service.ListPostsInput{
		Page:          queryInt(c, "page"),
		Size:          queryInt(c, "size"),
		CommunityID:   queryUint(c, "communityId"),
		AuthorID:      queryUint(c, "authorId"),
		DestinationID: queryUint(c, "destinationId"),
		Tag:           c.Query("tag"),
	}, viewerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.UserID(c)
	post, err := h.svc.GetPost(c.Request.Context(), postID, viewerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), currentUser(c), postID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), currentUser(c), postID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
