package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bakeshop/internal/catalog"
	"bakeshop/internal/domain"
	"bakeshop/internal/reservation"
	"bakeshop/internal/router"
	"bakeshop/internal/service"
	"bakeshop/internal/visit"
)

const (
	msgNoSlots      = "We couldn't load pickup dates. Please try again in a moment."
	msgInvalidEmail = "Please enter a valid email address."
	msgLinkFailed   = "We couldn't send a login link. Please try again."
	msgEmptyEmail   = "Please enter your email."
	msgLoginFailed  = "That login link didn't work. It may have expired or already been used."
)

func (s *Server) home(c *gin.Context) {
	hp, err := s.svc.Reservation.Load(backendContext(c), visitID(c))
	if err != nil {
		s.renderError(c, err, "Pre-order", msgNoSlots, nil)
		return
	}
	c.HTML(http.StatusOK, "home.tmpl", homeData{
		page:  page{Title: "Pre-order", LoggedIn: hp.Identity.LoggedIn},
		Slots: slotRows(hp.Slots),
		Panel: panelFor(hp.Reservation),
	})
}

func slotRows(slots []domain.PickupSlot) []slotRow {
	rows := make([]slotRow, 0, len(slots))
	for _, sl := range slots {
		rows = append(rows, slotRow{
			Action:  router.SelectSlot.Path(string(sl.ID)),
			Date:    sl.Date.Label(),
			Label:   catalog.Label(sl.Available),
			SoldOut: sl.Available <= 0,
		})
	}
	return rows
}

func panelFor(v *reservation.View) *selectionPanel {
	sel := v.Selection()
	if sel == nil {
		return nil
	}
	p := &selectionPanel{
		Date:         sel.Slot.Date.Label(),
		Quantity:     sel.Quantity,
		Max:          v.MaxQuantity(),
		CanIncrement: v.CanIncrement(),
		CanDecrement: v.CanDecrement(),
		CanSubmit:    v.CanSubmit(),
		Submitting:   v.State() == reservation.StateSubmitting,
		BuyLabel:     "Loading...",
		Error:        v.Error(),
	}
	if q := v.Quote(); q != nil && !p.Submitting {
		p.BuyLabel = "Buy for " + q.DisplayPrice
	}
	return p
}

func (s *Server) selectSlot(c *gin.Context) {
	_, err := s.svc.Reservation.Select(c.Request.Context(), visitID(c), domain.SlotID(c.Param("id")))
	s.backHome(c, err)
}

func (s *Server) increment(c *gin.Context) {
	_, err := s.svc.Reservation.Increment(c.Request.Context(), visitID(c))
	s.backHome(c, err)
}

func (s *Server) decrement(c *gin.Context) {
	_, err := s.svc.Reservation.Decrement(c.Request.Context(), visitID(c))
	s.backHome(c, err)
}

func (s *Server) closeSelection(c *gin.Context) {
	_, err := s.svc.Reservation.Close(c.Request.Context(), visitID(c))
	s.backHome(c, err)
}

// backHome finishes a selection form post. Refused transitions leave the view
// as it was, so the visitor just sees the page again.
func (s *Server) backHome(c *gin.Context, err error) {
	if err != nil && mapErrorToStatus(err) >= http.StatusInternalServerError {
		s.renderError(c, err, "Pre-order", "Something went wrong. Please try again.", &link{URL: router.Home.Path(), Text: "Back"})
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, router.Home.Path())
}

func (s *Server) checkout(c *gin.Context) {
	target, err := s.svc.Checkout.Submit(backendContext(c), visitID(c))
	if err != nil {
		// The failure message is on the selection panel by now.
		_ = c.Error(err)
		c.Redirect(http.StatusSeeOther, router.Home.Path())
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) success(c *gin.Context) {
	ctx := backendContext(c)
	comp, err := s.svc.Completion.Load(ctx, visitID(c), c.Request.URL.Query())
	if err != nil {
		s.renderError(c, err, "Thank you", "Something went wrong. Please try again.", &link{URL: router.Home.Path(), Text: "Home"})
		return
	}
	if comp.Redirect != "" {
		c.Redirect(http.StatusFound, comp.Redirect)
		return
	}
	s.renderSuccess(c, http.StatusOK, comp.Claim, "", s.svc.Auth.Authenticated(ctx))
}

func (s *Server) claimAccount(c *gin.Context) {
	ctx := backendContext(c)
	form, err := s.svc.Account.Claim(ctx, visitID(c), c.PostForm("email"))
	switch {
	case err == nil:
		s.renderSuccess(c, http.StatusOK, form, "", false)
	case errors.Is(err, visit.ErrNoSession):
		c.Redirect(http.StatusSeeOther, router.Home.Path())
	case errors.Is(err, visit.ErrEmptyEmail):
		s.renderSuccess(c, http.StatusBadRequest, form, msgEmptyEmail, false)
	case errors.Is(err, visit.ErrClaimInFlight), errors.Is(err, visit.ErrClaimDone):
		s.renderSuccess(c, http.StatusConflict, form, "", false)
	default:
		s.renderError(c, err, "Thank you", "Something went wrong. Please try again.", nil)
	}
}

func (s *Server) renderSuccess(c *gin.Context, status int, form visit.ClaimForm, notice string, loggedIn bool) {
	data := successData{
		page:   page{Title: "Thank you", LoggedIn: loggedIn},
		Claim:  form,
		Notice: notice,
	}
	switch form.Result {
	case domain.ClaimSuccess:
		data.Refresh = &refresh{After: service.SuccessRedirectDelay, URL: router.Home.Path()}
	case domain.ClaimConflict:
		data.ConflictLogin = router.LoginFor(form.Email)
	}
	c.HTML(status, "success.tmpl", data)
}

func (s *Server) login(c *gin.Context) {
	lp, err := s.svc.Auth.LoginPage(backendContext(c), visitID(c), c.Query("email"))
	if err != nil {
		s.renderError(c, err, "Login", "Something went wrong. Please try again.", nil)
		return
	}
	if lp.Redirect != "" {
		c.Redirect(http.StatusFound, lp.Redirect)
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", loginData{page: page{Title: "Login"}, Form: lp.Form})
}

func (s *Server) requestLoginLink(c *gin.Context) {
	email := c.PostForm("email")
	err := s.svc.Auth.RequestLogin(backendContext(c), visitID(c), email)
	if err == nil {
		c.Redirect(http.StatusSeeOther, router.Login.Path())
		return
	}
	_ = c.Error(err)
	notice := msgLinkFailed
	if errors.Is(err, service.ErrInvalidInput) {
		notice = msgInvalidEmail
	}
	c.HTML(mapErrorToStatus(err), "login.tmpl", loginData{
		page:   page{Title: "Login"},
		Form:   visit.LoginForm{Email: email},
		Notice: notice,
	})
}

func (s *Server) loginToken(c *gin.Context) {
	loc, cookies, err := s.svc.Auth.CompleteLogin(backendContext(c), c.Param("token"))
	if err != nil {
		s.renderError(c, err, "Login", msgLoginFailed, &link{URL: router.Login.Path(), Text: "Request a new link"})
		return
	}
	relayCookies(c, cookies)
	c.Redirect(http.StatusFound, loc)
}

func (s *Server) logout(c *gin.Context) {
	cookies, err := s.svc.Auth.Logout(backendContext(c), visitID(c))
	if err != nil {
		s.logger.Warn("logout failed", zap.Error(err))
		_ = c.Error(err)
	}
	relayCookies(c, cookies)
	c.Redirect(http.StatusFound, router.Home.Path())
}

func (s *Server) renderError(c *gin.Context, err error, title, msg string, back *link) {
	_ = c.Error(err)
	c.HTML(mapErrorToStatus(err), "error.tmpl", errorData{
		page:    page{Title: title},
		Heading: "Sorry!",
		Message: msg,
		Back:    back,
	})
}
