// Package api contains the wire representations of the OpenStack payloads
// the inventory client consumes. Field sets are trimmed to what billing
// needs; unknown fields are ignored on decode.
package api

import (
	"bytes"
	"encoding/json"
)

type TokenInfo struct {
	Token Token `json:"token"`
}

type Token struct {
	Catalog []Service `json:"catalog"`
}

type Service struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Endpoints []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	Region    string `json:"region"`
	Interface string `json:"interface"`
	URL       string `json:"url"`
}

type Users struct {
	Users []User `json:"users"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DomainID string `json:"domain_id"`
}

type Projects struct {
	Projects []Project `json:"projects"`
}

type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DomainID string `json:"domain_id"`
}

type Domains struct {
	Domains []Domain `json:"domains"`
}

type Domain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Servers struct {
	Servers []Server `json:"servers"`
}

type Server struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	TenantID string       `json:"tenant_id"`
	Flavor   ServerFlavor `json:"flavor"`
	Image    ImageRef     `json:"image"`
	Status   string       `json:"status"`

	Zone *string `json:"OS-EXT-AZ:availability_zone"`

	AttachedVolumes []AttachedVolume `json:"os-extended-volumes:volumes_attached"`
}

type ServerFlavor struct {
	ID string `json:"id"`
}

type AttachedVolume struct {
	ID string `json:"id"`
}

// ImageRef handles the two shapes nova uses for a server's image
// reference: a bare string (possibly empty) or an object carrying an id.
type ImageRef struct {
	ID string
}

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

type Flavors struct {
	Flavors []Flavor `json:"flavors"`
}

type Flavor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	VCPUs uint64 `json:"vcpus"`
	RAM   uint64 `json:"ram"`
	Disk  uint64 `json:"disk"`
}

type Volumes struct {
	Volumes []Volume `json:"volumes"`

	Links []Link `json:"volumes_links"`
}

type Volume struct {
	ID     string `json:"id"`
	Size   uint64 `json:"size"`
	UserID string `json:"user_id"`

	TenantID string `json:"os-vol-tenant-attr:tenant_id"`

	AvailabilityZone string `json:"availability_zone"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Images struct {
	Images []Image `json:"images"`

	Next *string `json:"next"`
}

type Image struct {
	ID      string  `json:"id"`
	Size    *uint64 `json:"size"`
	Owner   *string `json:"owner"`
	OwnerID *string `json:"owner_id"`
	UserID  *string `json:"user_id"`
}
