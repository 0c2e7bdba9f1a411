package redis

import "fmt"

// Key prefix for all foxden data
const keyPrefix = "foxden"

// accountKey returns the Redis key for an Account
func accountKey(username string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

// userDataKey returns the Redis key for a per-account UserData document
func userDataKey(username string) string {
	return fmt.Sprintf("%s:userdata:%s", keyPrefix, username)
}
