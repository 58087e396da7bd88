package metadata

import (
	"context"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/dmitrijs2005/clansession/internal/cryptox"
)

const (
	keystoreSalt     = "salt"
	keystoreVerifier = "verifier"
	saltSize         = 32
)

// EncryptedRepository seals values with AES-GCM before handing them to the
// wrapped repository. Keys stay in clear text.
type EncryptedRepository struct {
	inner Repository
	aead  cipher.AEAD
}

func NewEncryptedRepository(inner Repository, aead cipher.AEAD) *EncryptedRepository {
	return &EncryptedRepository{inner: inner, aead: aead}
}

func (r *EncryptedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(r.aead, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt metadata[%s]: %w", key, err)
	}
	return stored(plain), nil
}

func (r *EncryptedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(r.aead, value)
	if err != nil {
		return fmt.Errorf("failed to encrypt metadata[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *EncryptedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *EncryptedRepository) List(ctx context.Context) (map[string][]byte, error) {
	sealed, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(sealed))
	for k, v := range sealed {
		plain, err := cryptox.Open(r.aead, v)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt metadata[%s]: %w", k, err)
		}
		out[k] = stored(plain)
	}
	return out, nil
}

func (r *EncryptedRepository) Clear(ctx context.Context) error {
	return r.inner.Clear(ctx)
}

func (r *EncryptedRepository) Update(ctx context.Context, fn func(tx Repository) error) error {
	return r.inner.Update(ctx, func(tx Repository) error {
		return fn(&EncryptedRepository{inner: tx, aead: r.aead})
	})
}

// EncryptedFactory wraps every namespace of inner with the same AEAD.
type EncryptedFactory struct {
	inner Factory
	aead  cipher.AEAD
}

// NewEncryptedFactory derives the at-rest key from passphrase. The salt and
// a verifier live unencrypted in the keystore namespace of inner; they are
// created on first use. A passphrase that does not match the stored verifier
// yields common.ErrWrongPassphrase.
func NewEncryptedFactory(ctx context.Context, inner Factory, passphrase []byte) (*EncryptedFactory, error) {
	key, err := loadOrCreateKey(ctx, inner.Namespace(common.NamespaceKeystore), passphrase)
	if err != nil {
		return nil, err
	}
	aead, err := cryptox.NewAEAD(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedFactory{inner: inner, aead: aead}, nil
}

func (f *EncryptedFactory) Namespace(name string) Repository {
	return NewEncryptedRepository(f.inner.Namespace(name), f.aead)
}

func loadOrCreateKey(ctx context.Context, keystore Repository, passphrase []byte) ([]byte, error) {
	salt, err := keystore.Get(ctx, keystoreSalt)
	if err != nil {
		return nil, err
	}

	if salt == nil {
		salt, err = cryptox.RandomBytes(saltSize)
		if err != nil {
			return nil, err
		}
		key := cryptox.DeriveKey(passphrase, salt)
		err = keystore.Update(ctx, func(tx Repository) error {
			if err := tx.Set(ctx, keystoreSalt, salt); err != nil {
				return err
			}
			return tx.Set(ctx, keystoreVerifier, cryptox.MakeVerifier(key))
		})
		if err != nil {
			return nil, fmt.Errorf("keystore init: %w", err)
		}
		return key, nil
	}

	verifier, err := keystore.Get(ctx, keystoreVerifier)
	if err != nil {
		return nil, err
	}
	key := cryptox.DeriveKey(passphrase, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return nil, common.ErrWrongPassphrase
	}
	return key, nil
}
