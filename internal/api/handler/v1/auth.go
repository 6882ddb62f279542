package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/pkg/jwthelper"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/service"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/storage"
)

const maxImageSize = 5 << 20

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

type AuthHandler struct {
	conf   *config.APIConfig
	svc    AuthService
	images storage.Storage
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, images storage.Storage) *AuthHandler {
	return &AuthHandler{
		conf:   conf,
		svc:    svc,
		images: images,
	}
}

// HandleSignup godoc
// @Summary      Register a new user
// @Description  Accepts JSON or a multipart form; the form may carry a profile image in the "image" field.
// @Tags         auth
// @Accept       json,mpfd
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Param        image     formData  file  false "profile image"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	imageURL, respErr := h.saveImage(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Wallet:   req.WalletAmount(),
		Birthday: req.BirthdayDate(),
		Image:    imageURL,
	})
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleSignup -> h.svc.Signup")
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// saveImage stores the optional "image" form file and returns its URL.
func (h *AuthHandler) saveImage(ctx *gin.Context) (string, *response.Err) {
	if h.images == nil || ctx.ContentType() != gin.MIMEMultipartPOSTForm {
		return "", nil
	}

	fh, err := ctx.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", response.ErrBadRequest(err)
	}
	if fh.Size > maxImageSize {
		return "", response.ErrBadRequest(fmt.Errorf("image must be at most %d bytes", maxImageSize))
	}

	data, err := readFormFile(fh)
	if err != nil {
		return "", response.ErrBadRequest(err)
	}

	uploaded, err := h.images.Upload(ctx.Request.Context(), &storage.UploadObject{
		FileName: fh.Filename,
		Data:     data,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return "", response.ErrBadRequest(err)
		}
		return "", response.ErrInternalServerError(fmt.Errorf("v1.HandleSignup -> h.images.Upload -> %w", err))
	}

	return uploaded.Url, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// HandleLogin godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}
