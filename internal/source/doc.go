// Package source provides item collections that report structural changes
// as splice mutations, for list controllers to subscribe to.
package source
