package mockapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/devtinder/devtinder/internal/session"
)

// account pairs a profile with its password.
type account struct {
	user     session.User
	password string
}

// dataStore is the in-memory dataset behind the mock API.
type dataStore struct {
	mu sync.Mutex
	// accounts by user ID.
	accounts map[string]*account
	// emails maps emailId -> user ID.
	emails map[string]string
	// acted tracks feed items a user has already sent a decision for:
	// actor ID -> set of target IDs.
	acted map[string]map[string]bool
	// requests maps recipient ID -> ordered sender IDs awaiting review.
	requests map[string][]string
	// connections maps user ID -> ordered connected user IDs.
	connections map[string][]string
}

func newDataStore() *dataStore {
	return &dataStore{
		accounts:    make(map[string]*account),
		emails:      make(map[string]string),
		acted:       make(map[string]map[string]bool),
		requests:    make(map[string][]string),
		connections: make(map[string][]string),
	}
}

// seed installs a deterministic demo dataset. Password for every account is
// "devtinder".
func (d *dataStore) seed() {
	demo := []session.User{
		{ID: "u-ada", FirstName: "Ada", LastName: "Lovelace", EmailID: "ada@example.com", Age: 36, Gender: "female", About: "Analytical engines and Go.", Skills: []string{"go", "math"}},
		{ID: "u-grace", FirstName: "Grace", LastName: "Hopper", EmailID: "grace@example.com", Age: 45, Gender: "female", About: "Compilers; ask me about bugs.", Skills: []string{"compilers", "cobol"}},
		{ID: "u-linus", FirstName: "Linus", LastName: "T", EmailID: "linus@example.com", Age: 34, Gender: "male", About: "Kernels and version control.", Skills: []string{"c", "git"}},
		{ID: "u-ken", FirstName: "Ken", LastName: "Thompson", EmailID: "ken@example.com", Age: 38, Gender: "male", About: "Small tools, composed.", Skills: []string{"c", "unix", "go"}},
	}
	for i := range demo {
		d.addAccount(demo[i], "devtinder")
	}
	// Ada starts with a pending request from Linus and a connection to Grace.
	d.requests["u-ada"] = []string{"u-linus"}
	d.connections["u-ada"] = []string{"u-grace"}
	d.connections["u-grace"] = []string{"u-ada"}
}

func (d *dataStore) addAccount(u session.User, password string) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	d.accounts[u.ID] = &account{user: u, password: password}
	d.emails[u.EmailID] = u.ID
}

// authenticate returns the user for valid credentials.
func (d *dataStore) authenticate(email, password string) (session.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.emails[email]
	if !ok {
		return session.User{}, false
	}
	acct := d.accounts[id]
	if acct.password != password {
		return session.User{}, false
	}
	return acct.user, true
}

// register creates an account; fails when the email is taken.
func (d *dataStore) register(u session.User, password string) (session.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.emails[u.EmailID]; taken {
		return session.User{}, false
	}
	u.ID = uuid.NewString()
	d.addAccount(u, password)
	return u, true
}

// get returns a user by ID.
func (d *dataStore) get(id string) (session.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.accounts[id]
	if !ok {
		return session.User{}, false
	}
	return acct.user, true
}

// update applies non-zero profile fields and returns the updated user.
func (d *dataStore) update(id string, apply func(*session.User)) (session.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.accounts[id]
	if !ok {
		return session.User{}, false
	}
	apply(&acct.user)
	return acct.user, true
}

// feed lists candidates for viewer: everyone who is not the viewer, not
// already acted on, not already connected, and not already requesting.
func (d *dataStore) feed(viewer string) []session.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	skip := map[string]bool{viewer: true}
	for target := range d.acted[viewer] {
		skip[target] = true
	}
	for _, id := range d.connections[viewer] {
		skip[id] = true
	}
	for _, id := range d.requests[viewer] {
		skip[id] = true
	}

	var out []session.User
	for id, acct := range d.accounts {
		if !skip[id] {
			out = append(out, acct.user)
		}
	}
	return out
}

// send records a feed decision; interested queues a request for the target.
func (d *dataStore) send(actor, target, status string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[target]; !ok {
		return false
	}
	if d.acted[actor] == nil {
		d.acted[actor] = make(map[string]bool)
	}
	d.acted[actor][target] = true

	if status == "interested" {
		d.requests[target] = append(d.requests[target], actor)
	}
	return true
}

// received lists the profiles of users whose requests await viewer's review.
func (d *dataStore) received(viewer string) []session.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []session.User
	for _, from := range d.requests[viewer] {
		if acct, ok := d.accounts[from]; ok {
			out = append(out, acct.user)
		}
	}
	return out
}

// review settles a pending request; accepted connects both users.
func (d *dataStore) review(viewer, from, status string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.requests[viewer]
	found := -1
	for i, id := range pending {
		if id == from {
			found = i
			break
		}
	}
	if found < 0 {
		return false
	}
	d.requests[viewer] = append(pending[:found:found], pending[found+1:]...)

	if status == "accepted" {
		d.connections[viewer] = append(d.connections[viewer], from)
		d.connections[from] = append(d.connections[from], viewer)
	}
	return true
}

// connected lists viewer's connections.
func (d *dataStore) connected(viewer string) []session.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []session.User
	for _, id := range d.connections[viewer] {
		if acct, ok := d.accounts[id]; ok {
			out = append(out, acct.user)
		}
	}
	return out
}
