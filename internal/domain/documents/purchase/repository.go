package purchase

import "khaata/internal/domain/documents/khaata"

// Repository defines persistence for purchases.
type Repository = khaata.Repository[*Purchase]
