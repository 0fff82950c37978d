package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"bakeshop/internal/backend"
	"bakeshop/internal/catalog"
	"bakeshop/internal/pricing"
	"bakeshop/internal/repository"
	"bakeshop/internal/reservation"
	"bakeshop/internal/router"
	"bakeshop/internal/service"
	"bakeshop/internal/visit"
)

// Services are the storefront flows the server exposes.
type Services struct {
	Reservation *service.ReservationService
	Checkout    *service.CheckoutService
	Completion  *service.CompletionService
	Account     *service.AccountService
	Auth        *service.AuthService
}

type Server struct {
	engine       *gin.Engine
	svc          Services
	logger       *zap.Logger
	cookieSecure bool
}

type Option func(*Server)

// WithSecureCookies marks the visitor cookie Secure.
func WithSecureCookies(secure bool) Option { return func(s *Server) { s.cookieSecure = secure } }

func NewServer(svc Services, logger *zap.Logger, opts ...Option) (*Server, error) {
	r := gin.New()
	s := &Server{engine: r, svc: svc, logger: logger}
	for _, o := range opts {
		o(s)
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.Use(requestID(), requestLogger(logger), gin.Recovery())
	s.registerRoutes()
	return s, nil
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	pages := s.engine.Group("", s.visitor())
	{
		pages.GET(router.Home.Pattern(), s.home)
		pages.POST(router.SelectSlot.Pattern(), s.selectSlot)
		pages.POST(router.IncrementQty.Pattern(), s.increment)
		pages.POST(router.DecrementQty.Pattern(), s.decrement)
		pages.POST(router.CloseSelection.Pattern(), s.closeSelection)
		pages.POST(router.Checkout.Pattern(), s.checkout)

		pages.GET(router.Success.Pattern(), s.success)
		pages.POST(router.ClaimAccount.Pattern(), s.claimAccount)

		pages.GET(router.Login.Pattern(), s.login)
		pages.POST(router.RequestLoginLink.Pattern(), s.requestLoginLink)
		pages.GET(router.LoginToken.Pattern(), s.loginToken)
		pages.GET(router.Logout.Pattern(), s.logout)
	}

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/healthz", s.healthz)
		v1.GET("/quote", s.quote)
		v1.GET("/slots", s.listSlots)
		v1.GET("/reservation", s.visitor(), s.reservation)
	}
}

func mapErrorToStatus(err error) int {
	var (
		se *backend.ServerError
		ne *backend.NetworkError
		ve *service.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, pricing.ErrUnknownCurrency),
		errors.Is(err, visit.ErrEmptyEmail),
		errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, catalog.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrInvalidState),
		errors.Is(err, reservation.ErrSoldOut),
		errors.Is(err, reservation.ErrQuantityBounds),
		errors.Is(err, reservation.ErrNoPricing),
		errors.Is(err, visit.ErrClaimInFlight),
		errors.Is(err, visit.ErrClaimDone),
		errors.Is(err, visit.ErrNoSession):
		return http.StatusConflict
	case errors.As(err, &ne):
		return http.StatusServiceUnavailable
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
