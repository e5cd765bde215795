package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"finance_tracker/internal/client"
	"finance_tracker/internal/form"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthView is the data of the sign-in, sign-up and recovery pages
type AuthView struct {
	Heading string
	Intro   string
	Form    *FormView
	Error   string // Shown instead of the form, e.g. a missing reset token
	Step    string
	Email   string
}

func (s *Server) renderAuth(c *gin.Context, status int, page, title string, v AuthView, toast *Toast) {
	s.render(c, status, page, Page{Title: title, Toast: toast, Data: v})
}

func (s *Server) signinPage(c *gin.Context) {
	if s.session(c).Active() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	fv := newFormView(form.Signin.Name, "/signin", "Sign In", form.Signin.New())
	s.renderAuth(c, http.StatusOK, "signin", "Sign In", AuthView{Heading: "Sign In", Form: &fv}, nil)
}

func (s *Server) signin(c *gin.Context) {
	f := form.Signin.New()
	f.Fill(postedValues(c))
	err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
		res, err := s.api.Signin(ctx, strings.ToLower(v.Get("email")), v["password"])
		if err != nil {
			return err
		}
		if err := s.session(c).Begin(res.Token); err != nil {
			return err
		}
		setFlash(c, toastSuccess, res.Message)
		return nil
	})
	if err == nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	status, toast := submitFailure(f, err)
	_ = f.Change("password", "")
	fv := newFormView(form.Signin.Name, "/signin", "Sign In", f)
	s.renderAuth(c, status, "signin", "Sign In", AuthView{Heading: "Sign In", Form: &fv}, toast)
}

func (s *Server) signupPage(c *gin.Context) {
	fv := newFormView(form.Signup.Name, "/signup", "Sign Up", form.Signup.New())
	s.renderAuth(c, http.StatusOK, "signup", "Sign Up", AuthView{Heading: "Create Account", Form: &fv}, nil)
}

func (s *Server) signup(c *gin.Context) {
	f := form.Signup.New()
	f.Fill(postedValues(c))
	err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
		_, msg, err := s.api.Signup(ctx, client.SignupRequest{
			FullName:     v.Get("fullname"),
			Email:        strings.ToLower(v.Get("email")),
			Gender:       v.Get("gender"),
			MobileNumber: v.Get("mobilenumber"),
			Password:     v["password"],
		})
		if err != nil {
			return err
		}
		setFlash(c, toastSuccess, msg)
		return nil
	})
	if err == nil {
		c.Redirect(http.StatusFound, "/signin")
		return
	}
	status, toast := submitFailure(f, err)
	fv := newFormView(form.Signup.Name, "/signup", "Sign Up", f)
	s.renderAuth(c, status, "signup", "Sign Up", AuthView{Heading: "Create Account", Form: &fv}, toast)
}

// logout forgets the token locally; the API keeps no server-side session
func (s *Server) logout(c *gin.Context) {
	if err := s.session(c).End(); err != nil {
		logrus.WithError(err).Warn("Clearing session failed")
	}
	c.Redirect(http.StatusFound, "/signin")
}

func otpURL(email string) string {
	return "/otp-forgot-password?email=" + url.QueryEscape(email)
}

// sendOTP submits an email form and redirects to the OTP step on success
func (s *Server) sendOTP(c *gin.Context, f *form.Form) error {
	return f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
		email := strings.ToLower(v.Get("email"))
		if _, err := s.api.SendOTP(ctx, email); err != nil {
			return err
		}
		setFlash(c, toastSuccess, "OTP sent to your email!")
		c.Redirect(http.StatusFound, otpURL(email))
		return nil
	})
}

func (s *Server) forgotPasswordPage(c *gin.Context) {
	fv := newFormView(form.ForgotPassword.Name, "/forgot-password", "Send OTP", form.ForgotPassword.New())
	s.renderAuth(c, http.StatusOK, "forgot_password", "Forgot Password", AuthView{Heading: "Forgot Password", Form: &fv}, nil)
}

func (s *Server) forgotPassword(c *gin.Context) {
	f := form.ForgotPassword.New()
	f.Fill(postedValues(c))
	if err := s.sendOTP(c, f); err != nil {
		status, toast := submitFailure(f, err)
		fv := newFormView(form.ForgotPassword.Name, "/forgot-password", "Send OTP", f)
		s.renderAuth(c, status, "forgot_password", "Forgot Password", AuthView{Heading: "Forgot Password", Form: &fv}, toast)
	}
}

// OTP recovery steps
const (
	stepEmail    = "email"
	stepOTP      = "otp"
	stepPassword = "password"
)

func (s *Server) otpView(step, email, resetToken string, f *form.Form) AuthView {
	v := AuthView{Heading: "Reset Password", Step: step, Email: email}
	var fv FormView
	switch step {
	case stepOTP:
		v.Intro = "Enter the 6-digit code sent to " + email
		fv = newFormView(form.VerifyOTP.Name, "/otp-forgot-password", "Verify OTP", f)
		fv.Hidden["email"] = email
	case stepPassword:
		v.Intro = "Choose a new password"
		fv = newFormView(form.NewPassword.Name, "/otp-forgot-password", "Reset Password", f)
		fv.Hidden["reset_token"] = resetToken
	default:
		v.Intro = "We will email you a one-time code"
		fv = newFormView(form.ForgotPassword.Name, "/otp-forgot-password", "Send OTP", f)
	}
	fv.Hidden["step"] = step
	fv.Cancel = "/signin"
	v.Form = &fv
	return v
}

// otpPage shows the email step, or the OTP step when ?email= is present
func (s *Server) otpPage(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		s.renderAuth(c, http.StatusOK, "otp_forgot_password", "Reset Password", s.otpView(stepEmail, "", "", form.ForgotPassword.New()), nil)
		return
	}
	s.renderAuth(c, http.StatusOK, "otp_forgot_password", "Reset Password", s.otpView(stepOTP, email, "", form.VerifyOTP.New()), nil)
}

func (s *Server) otpStep(c *gin.Context) {
	values := postedValues(c)
	email := strings.ToLower(strings.TrimSpace(values["email"]))

	switch values["step"] {
	case stepEmail:
		f := form.ForgotPassword.New()
		f.Fill(values)
		if err := s.sendOTP(c, f); err != nil {
			status, toast := submitFailure(f, err)
			s.renderAuth(c, status, "otp_forgot_password", "Reset Password", s.otpView(stepEmail, "", "", f), toast)
		}

	case stepOTP:
		f := form.VerifyOTP.New()
		f.Fill(values)
		var resetToken string
		err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
			token, err := s.api.VerifyOTP(ctx, email, v.Get("otp"))
			resetToken = token
			return err
		})
		if err != nil {
			status, toast := submitFailure(f, err)
			s.renderAuth(c, status, "otp_forgot_password", "Reset Password", s.otpView(stepOTP, email, "", f), toast)
			return
		}
		toast := &Toast{Kind: toastSuccess, Message: "OTP verified successfully!"}
		s.renderAuth(c, http.StatusOK, "otp_forgot_password", "Reset Password", s.otpView(stepPassword, email, resetToken, form.NewPassword.New()), toast)

	case stepPassword:
		resetToken := values["reset_token"]
		f := form.NewPassword.New()
		f.Fill(values)
		err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
			_, err := s.api.ResetPasswordWithOTP(ctx, resetToken, v["password"])
			return err
		})
		if err != nil {
			status, toast := submitFailure(f, err)
			s.renderAuth(c, status, "otp_forgot_password", "Reset Password", s.otpView(stepPassword, email, resetToken, f), toast)
			return
		}
		setFlash(c, toastSuccess, "Password reset successfully!")
		c.Redirect(http.StatusFound, "/signin")

	default:
		c.Redirect(http.StatusFound, "/otp-forgot-password")
	}
}

func resetView(token string, f *form.Form) AuthView {
	v := AuthView{Heading: "Reset Password"}
	if token == "" {
		v.Error = "Invalid or missing reset token."
		return v
	}
	fv := newFormView(form.NewPassword.Name, "/reset-password", "Reset Password", f)
	fv.Hidden["token"] = token
	fv.Cancel = "/signin"
	v.Form = &fv
	return v
}

// resetPasswordPage serves the link sent by email
func (s *Server) resetPasswordPage(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	status := http.StatusOK
	if token == "" {
		status = http.StatusBadRequest
	}
	s.renderAuth(c, status, "reset_password", "Reset Password", resetView(token, form.NewPassword.New()), nil)
}

func (s *Server) resetPassword(c *gin.Context) {
	values := postedValues(c)
	token := strings.TrimSpace(values["token"])
	if token == "" {
		s.renderAuth(c, http.StatusBadRequest, "reset_password", "Reset Password", resetView("", nil), nil)
		return
	}
	f := form.NewPassword.New()
	f.Fill(values)
	err := f.Submit(c.Request.Context(), func(ctx context.Context, v form.Values) error {
		_, err := s.api.ResetPassword(ctx, token, v["password"])
		return err
	})
	if err != nil {
		status, toast := submitFailure(f, err)
		s.renderAuth(c, status, "reset_password", "Reset Password", resetView(token, f), toast)
		return
	}
	setFlash(c, toastSuccess, "Password reset successfully! Please sign in.")
	c.Redirect(http.StatusFound, "/signin")
}
