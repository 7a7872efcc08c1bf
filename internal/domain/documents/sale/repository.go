package sale

import "khaata/internal/domain/documents/khaata"

// Repository defines persistence for sales.
type Repository = khaata.Repository[*Sale]
