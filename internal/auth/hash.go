package auth

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// HashPasswords replaces every plaintext password in the credentials file at
// path with its bcrypt hash and returns the users that were changed. Passwords
// that are already hashed are left alone, so running it twice is harmless.
// Everything else in the file is written back as it was read.
func HashPasswords(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, changed, err := hashDocument(data)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err = os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return nil, err
	}
	return changed, nil
}

func hashDocument(data []byte) ([]byte, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil, ErrNoUsers
	}
	usernames := mappingValue(mappingValue(doc.Content[0], "credentials"), "usernames")
	if usernames == nil || usernames.Kind != yaml.MappingNode {
		return nil, nil, ErrNoUsers
	}

	var changed []string
	for i := 0; i+1 < len(usernames.Content); i += 2 {
		user := usernames.Content[i].Value
		password := mappingValue(usernames.Content[i+1], "password")
		if password == nil || password.Value == "" || isHashed(password.Value) {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password.Value), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hashing password of %s: %w", user, err)
		}
		password.Value = string(hash)
		password.Style = 0
		password.Tag = "!!str"
		changed = append(changed, user)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, nil, err
	}
	return out, changed, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
