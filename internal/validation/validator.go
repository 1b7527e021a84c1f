package validation

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/models"
)

const (
	MinTitleLength    = 3
	MaxTitleLength    = 200
	MaxExcerptLength  = 500
	MaxHashtags       = 15
	MaxTags           = 20
	MaxFeedbackLength = 2000
)

var genreValues = func() []interface{} {
	values := make([]interface{}, len(models.Genres))
	for i, g := range models.Genres {
		values[i] = g
	}
	return values
}()

// ValidateStoryInput validates a story create/update payload
func ValidateStoryInput(in *models.StoryInput) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title,
			validation.Required.Error("title is required"),
			validation.By(trimmedLength(MinTitleLength, MaxTitleLength)),
		),
		validation.Field(&in.Content,
			validation.Required.Error("content is required"),
			validation.By(notBlank("content")),
		),
		validation.Field(&in.Excerpt,
			validation.RuneLength(0, MaxExcerptLength),
		),
		validation.Field(&in.Genre,
			validation.Required.Error("genre is required"),
			validation.In(genreValues...).Error("genre must be one of: "+strings.Join(models.Genres, ", ")),
		),
		validation.Field(&in.Hashtags,
			validation.Length(0, MaxHashtags),
			validation.Each(validation.Required, validation.RuneLength(1, 50)),
		),
		validation.Field(&in.Tags,
			validation.Length(0, MaxTags),
			validation.Each(validation.RuneLength(1, 50)),
		),
		validation.Field(&in.CategoryID,
			is.UUID.Error("category_id must be a UUID"),
		),
	)
	return toAppError(err)
}

// ValidateComment validates a new comment
func ValidateComment(in *models.CommentInput) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Body,
			validation.Required.Error("body is required"),
			validation.By(notBlank("body")),
			validation.By(wordCountRule(models.MaxCommentWords)),
		),
		validation.Field(&in.ParentID,
			is.UUID.Error("parent_id must be a UUID"),
		),
	)
	return toAppError(err)
}

// ValidateFeedback checks moderation feedback. required is true for rejections.
func ValidateFeedback(feedback string, required bool) error {
	trimmed := strings.TrimSpace(feedback)
	if required && trimmed == "" {
		return apperror.Validation("feedback is required when rejecting a story")
	}
	if len([]rune(trimmed)) > MaxFeedbackLength {
		return apperror.Validation("feedback must be at most %d characters", MaxFeedbackLength)
	}
	return nil
}

// ValidateSearchQuery enforces the minimum query length after trimming
func ValidateSearchQuery(q string, minLength int) error {
	if len([]rune(strings.TrimSpace(q))) < minLength {
		return apperror.Validation("search query must be at least %d characters", minLength)
	}
	return nil
}

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// ValidateUser validates a user created by an administrator
func ValidateUser(u *models.User) error {
	err := validation.ValidateStruct(u,
		validation.Field(&u.Username,
			validation.Required.Error("username is required"),
			validation.Match(usernameRe).Error("username must be 3-30 lowercase letters, digits or underscores"),
		),
		validation.Field(&u.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("email must be a valid address"),
		),
		validation.Field(&u.DisplayName, validation.RuneLength(0, 100)),
		validation.Field(&u.Role,
			validation.Required.Error("role is required"),
			validation.In(models.RoleUser, models.RoleModerator, models.RoleAdmin).Error("role must be user, moderator or admin"),
		),
		validation.Field(&u.FollowersCount, validation.Min(0)),
	)
	return toAppError(err)
}

// trimmedLength checks rune length after trimming surrounding whitespace
func trimmedLength(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		n := len([]rune(strings.TrimSpace(s)))
		if n < min || n > max {
			return validation.NewError("validation_length_out_of_range", "the length must be between {{.min}} and {{.max}}").
				SetParams(map[string]interface{}{"min": min, "max": max})
		}
		return nil
	}
}

func notBlank(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_blank", field+" must not be blank")
		}
		return nil
	}
}

// wordCountRule creates a validation rule for max word count.
func wordCountRule(maxWords int) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if len(strings.Fields(s)) > maxWords {
			return validation.NewError("validation_too_many_words", "body exceeds the maximum word count")
		}
		return nil
	}
}

// toAppError turns ozzo errors into a validation apperror, keeping field names in the message
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if errors.As(err, &ve) {
		return apperror.WrapValidation(ve)
	}
	// Internal errors (e.g. a misconfigured rule) are not the caller's fault
	return err
}
