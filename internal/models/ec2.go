package models

// Tag is a single key/value label attached to an instance
type Tag struct {
	Key   string
	Value string
}

// InstanceRecord represents the EC2 instance attributes kept in the inventory
type InstanceRecord struct {
	InstanceID       string
	State            string
	PrivateIPAddress string // "N/A" when the instance has none
	PublicIPAddress  string // "N/A" when the instance has none
	Tags             []Tag  // API order, duplicates kept
}
