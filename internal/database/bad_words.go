package database

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultBadWordsURL is the public list used to filter extracted terms
const DefaultBadWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords downloads the word list at url into bad_words unless the
// table already has entries
func (db *DB) SeedBadWords(ctx context.Context, url string) error {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		log.Printf("Bad words filter already populated with %d words", count)
		return nil
	}

	log.Println("Downloading bad words list...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	// Dedupe first: a failed insert aborts a postgres transaction
	seen := make(map[string]bool)
	var words []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		word := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading bad words: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.Dialect.RewriteQuery("INSERT INTO bad_words (word) VALUES (?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, word := range words {
		if _, err := stmt.ExecContext(ctx, word); err != nil {
			return fmt.Errorf("failed to insert bad word: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Bad words filter populated with %d words", len(words))
	return nil
}

// IsBadWord checks if a word is in the bad words list
func (db *DB) IsBadWord(ctx context.Context, word string) (bool, error) {
	cleanWord := strings.TrimSpace(strings.ToLower(word))

	var count int
	query := "SELECT COUNT(*) FROM bad_words WHERE word = ?"
	if err := db.QueryRowContext(ctx, query, cleanWord).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check bad word: %w", err)
	}

	if count > 0 {
		log.Printf("Bad word detected: '%s'", word)
	}

	return count > 0, nil
}

// FilterWords splits words into the allowed ones and the ones on the bad
// words list, keeping input order
func (db *DB) FilterWords(ctx context.Context, words []string) (allowed, blocked []string, err error) {
	for _, word := range words {
		isBad, err := db.IsBadWord(ctx, word)
		if err != nil {
			return nil, nil, err
		}
		if isBad {
			blocked = append(blocked, word)
		} else {
			allowed = append(allowed, word)
		}
	}
	return allowed, blocked, nil
}
