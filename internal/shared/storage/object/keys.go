package object

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"
)

const maxFileNameRunes = 120

var ErrInvalidFileName = errors.New("invalid file name")

// NewKey builds "<owner dir>/<yyyymmdd>/<random>_<clean file name>".
func NewKey(owner, fileName string) (string, error) {
	name, err := CleanFileName(fileName)
	if err != nil {
		return "", err
	}
	day := time.Now().UTC().Format("20060102")
	return path.Join(OwnerDir(owner), day, randomID()+"_"+name), nil
}

// OwnerDir hashes a session id so raw ids never appear in storage paths.
func OwnerDir(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:16])
}

// CleanFileName flattens separators to '_', drops control characters and caps
// the name at maxFileNameRunes, keeping the extension.
func CleanFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if strings.TrimSpace(s) == "" {
		return "", ErrInvalidFileName
	}
	runes := []rune(s)
	if len(runes) > maxFileNameRunes {
		ext := []rune(path.Ext(s))
		if len(ext) >= maxFileNameRunes {
			ext = nil
		}
		runes = append(runes[:maxFileNameRunes-len(ext)], ext...)
	}
	return string(runes), nil
}

// Sniff detects the content type from the first 512 bytes and returns a reader
// that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

func randomID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
