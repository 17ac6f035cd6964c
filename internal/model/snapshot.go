package model

// Snapshot is an in-memory copy of every record the engine reads.
type Snapshot struct {
	Accounts         []Account         `json:"accounts"`
	Incomes          []Income          `json:"incomes"`
	Buckets          []Bucket          `json:"expenses"`
	Partners         []Partner         `json:"partners"`
	Log              []LogEntry        `json:"transactions,omitempty"`
	PendingTransfers []PendingTransfer `json:"pendingTransfers,omitempty"`
}

// Account returns the active account with the given id.
func (s *Snapshot) Account(id string) (Account, bool) {
	return FindAccount(s.Accounts, id)
}

// Bucket returns the active bucket with the given id.
func (s *Snapshot) Bucket(id string) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.ID == id && !b.Deleted {
			return b, true
		}
	}
	return Bucket{}, false
}

// Income returns the active income with the given id.
func (s *Snapshot) Income(id string) (Income, bool) {
	for _, in := range s.Incomes {
		if in.ID == id && !in.Deleted {
			return in, true
		}
	}
	return Income{}, false
}

// Partner returns the active partner with the given id.
func (s *Snapshot) Partner(id string) (Partner, bool) {
	for _, p := range s.Partners {
		if p.ID == id && !p.Deleted {
			return p, true
		}
	}
	return Partner{}, false
}

// LogEntry returns the log entry with the given id.
func (s *Snapshot) LogEntry(id string) (LogEntry, bool) {
	for _, e := range s.Log {
		if e.ID == id {
			return e, true
		}
	}
	return LogEntry{}, false
}

// PendingTransfer returns the pending transfer with the given id.
func (s *Snapshot) PendingTransfer(id string) (PendingTransfer, bool) {
	for _, p := range s.PendingTransfers {
		if p.ID == id {
			return p, true
		}
	}
	return PendingTransfer{}, false
}

// ActiveAccounts drops tombstoned accounts.
func ActiveAccounts(accounts []Account) []Account {
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if !a.Deleted {
			out = append(out, a)
		}
	}
	return out
}

// ActiveBuckets drops tombstoned buckets.
func ActiveBuckets(buckets []Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.Deleted {
			out = append(out, b)
		}
	}
	return out
}

// ActiveIncomes drops tombstoned incomes.
func ActiveIncomes(incomes []Income) []Income {
	out := make([]Income, 0, len(incomes))
	for _, in := range incomes {
		if !in.Deleted {
			out = append(out, in)
		}
	}
	return out
}

// FindAccount looks up an active account by id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	if id == "" {
		return Account{}, false
	}
	for _, a := range accounts {
		if a.ID == id && !a.Deleted {
			return a, true
		}
	}
	return Account{}, false
}

// AccountIndex maps active account ids to accounts.
func AccountIndex(accounts []Account) map[string]Account {
	idx := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if !a.Deleted {
			idx[a.ID] = a
		}
	}
	return idx
}
