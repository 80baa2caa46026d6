package stub

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

// DemoUsers — пользователи демонстрационных данных (последний — администратор).
func DemoUsers() []models.User {
	return []models.User{
		{ID: "1", Username: "ann", FirstName: "Ann", LastName: "Lee"},
		{ID: "2", Username: "bob"},
		{ID: "3", Username: "moderator", Role: models.RoleAdmin},
	}
}

// Seed наполняет хранилище обсуждением статьи article.
func Seed(ctx context.Context, st *storage.Memory, article models.ID) error {
	const op = "stub/Seed"

	users := DemoUsers()
	ann, bob := users[0], users[1]

	first, err := st.Create(ctx, storage.CreateInput{
		ArticleID: article,
		Author:    bob,
		Content:   "Nice write-up! The part about **bounded queues** was new to me.",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	steps := []storage.CreateInput{
		{ParentID: first.ID, Author: ann, Content: "Thanks @bob! More on that in the *next* post."},
		{ArticleID: article, Author: ann, Content: "Sources are in the [repo](https://example.com/blog)."},
	}

	for _, in := range steps {
		if _, err := st.Create(ctx, in); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := st.ToggleLike(ctx, first.ID, ann.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
