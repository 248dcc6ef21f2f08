package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors keeps field errors in the order they were found.
type ValidationErrors []FieldError

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Result is either a valid, normalized value or the list of reasons it is not.
type Result[T any] struct {
	value T
	errs  ValidationErrors
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Invalid[T any](errs ValidationErrors) Result[T] {
	return Result[T]{errs: errs}
}

func (r Result[T]) Valid() bool {
	return !r.errs.HasErrors()
}

// Value is the zero T when the result is invalid.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Errors() ValidationErrors {
	return r.errs
}

func check[T any](value T, errs ValidationErrors) Result[T] {
	if errs.HasErrors() {
		return Invalid[T](errs)
	}
	return Ok(value)
}

const (
	maxNameLen     = 100
	maxPasswordLen = 256
	maxTitleLen    = 200
	maxSubtitleLen = 300
	maxCommentLen  = 5000
)

type Registration struct {
	Email       string
	Password    string
	DisplayName string
}

type Credentials struct {
	Email    string
	Password string
}

type Settings struct {
	DisplayName  string
	BlogTitle    string
	BlogSubtitle string
}

type ArticleFields struct {
	Title    string
	Subtitle string
	Content  string
}

func ValidateRegister(email, password, confirm, name string) Result[Registration] {
	var errs ValidationErrors

	email = validateEmail(email, &errs)
	validatePassword(password, &errs)
	if confirm != password {
		errs.Add("confirm", "Passwords do not match")
	}
	name = requireText("name", "Your name", name, maxNameLen, &errs)

	return check(Registration{Email: email, Password: password, DisplayName: name}, errs)
}

func ValidateLogin(email, password string) Result[Credentials] {
	var errs ValidationErrors

	email = validateEmail(email, &errs)
	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) > maxPasswordLen {
		errs.Add("password", "Password is too long")
	}

	return check(Credentials{Email: email, Password: password}, errs)
}

func ValidateSettings(name, blogTitle, blogSubtitle string) Result[Settings] {
	var errs ValidationErrors

	s := Settings{
		DisplayName:  requireText("name", "Your name", name, maxNameLen, &errs),
		BlogTitle:    requireText("blog_title", "Blog title", blogTitle, maxTitleLen, &errs),
		BlogSubtitle: requireText("blog_subtitle", "Blog subtitle", blogSubtitle, maxSubtitleLen, &errs),
	}
	return check(s, errs)
}

// ValidateArticle checks an edit. Drafts may be saved with empty fields;
// completeness is enforced on publish and on edits to published articles.
func ValidateArticle(title, subtitle, content string) Result[ArticleFields] {
	var errs ValidationErrors

	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxTitleLen {
		errs.Add("title", "Title is too long")
	}
	subtitle = strings.TrimSpace(subtitle)
	if utf8.RuneCountInString(subtitle) > maxSubtitleLen {
		errs.Add("subtitle", "Subtitle is too long")
	}

	return check(ArticleFields{Title: title, Subtitle: subtitle, Content: content}, errs)
}

func ValidateComment(content string) Result[string] {
	var errs ValidationErrors
	content = requireText("content", "Comment", content, maxCommentLen, &errs)
	return check(content, errs)
}

// validateEmail returns the trimmed, lowercased address.
func validateEmail(email string, errs *ValidationErrors) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		errs.Add("email", "Email is required")
		return email
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
	return email
}

func requireText(field, label, value string, max int, errs *ValidationErrors) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		errs.Add(field, label+" cannot be empty")
	case utf8.RuneCountInString(value) > max:
		errs.Add(field, label+" is too long")
	}
	return value
}

func validatePassword(password string, errs *ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}
	if len(password) > maxPasswordLen {
		errs.Add("password", "Password is too long")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
