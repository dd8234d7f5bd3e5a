package services

import (
	"growapi/internal/crypto"
	"growapi/internal/models"
)

// EncryptionService wraps the crypto box with domain-specific helpers for the
// fields kept encrypted at rest: user email and profile display name.
type EncryptionService struct {
	box *crypto.Box
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	box, err := crypto.NewBox(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{box: box}, nil
}

// EncryptUser encrypts the email and attaches its blind index for lookup.
func (s *EncryptionService) EncryptUser(user *models.User) error {
	encrypted, err := s.box.Encrypt(user.Email)
	if err != nil {
		return err
	}
	user.EmailBlindIndex = s.box.BlindIndex(user.Email)
	user.Email = encrypted
	return nil
}

func (s *EncryptionService) DecryptUser(user *models.User) error {
	email, err := s.box.Decrypt(user.Email)
	if err != nil {
		return err
	}
	user.Email = email
	return nil
}

func (s *EncryptionService) EncryptProfile(p *models.PlayerProfile) error {
	name, err := s.box.Encrypt(p.DisplayName)
	if err != nil {
		return err
	}
	p.DisplayName = name
	return nil
}

func (s *EncryptionService) DecryptProfile(p *models.PlayerProfile) error {
	name, err := s.box.Decrypt(p.DisplayName)
	if err != nil {
		return err
	}
	p.DisplayName = name
	return nil
}

// EmailBlindIndex is used at login to find the user row by email.
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.box.BlindIndex(email)
}

// DecryptName decrypts a raw display-name column value.
func (s *EncryptionService) DecryptName(ciphertext string) (string, error) {
	return s.box.Decrypt(ciphertext)
}
