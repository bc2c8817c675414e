// Package export serializes record sets into the SAMS cloud accounting
// XML format and persists one report file per billed hour.
package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

const cloudRecordsNamespace = "http://sams.snic.se/namespaces/2016/04/cloudrecords"

type xmlCloudRecords struct {
	XMLName xml.Name `xml:"cr:CloudRecords"`
	Xmlns   string   `xml:"xmlns:cr,attr"`

	Compute []xmlComputeRecord `xml:"cr:CloudComputeRecord"`
	Storage []xmlStorageRecord `xml:"cr:CloudStorageRecord"`
}

type xmlRecordIdentity struct {
	CreateTime string `xml:"cr:createTime,attr"`
	RecordID   string `xml:"cr:recordId,attr"`
}

type xmlComputeRecord struct {
	Identity xmlRecordIdentity `xml:"cr:RecordIdentity"`

	Site       string `xml:"cr:Site"`
	Project    string `xml:"cr:Project"`
	User       string `xml:"cr:User"`
	InstanceID string `xml:"cr:InstanceId"`
	StartTime  string `xml:"cr:StartTime"`
	EndTime    string `xml:"cr:EndTime"`
	Duration   string `xml:"cr:Duration"`
	Region     string `xml:"cr:Region"`
	Resource   string `xml:"cr:Resource"`
	Zone       string `xml:"cr:Zone"`
	Flavour    string `xml:"cr:Flavour"`
	Cost       string `xml:"cr:Cost"`

	AllocatedCPU    string `xml:"cr:AllocatedCPU"`
	AllocatedDisk   uint64 `xml:"cr:AllocatedDisk"`
	AllocatedMemory uint64 `xml:"cr:AllocatedMemory"`

	UsedCPU         string `xml:"cr:UsedCPU,omitempty"`
	UsedMemory      string `xml:"cr:UsedMemory,omitempty"`
	UsedNetworkUp   string `xml:"cr:UsedNetworkUp,omitempty"`
	UsedNetworkDown string `xml:"cr:UsedNetworkDown,omitempty"`
	IOPS            string `xml:"cr:IOPS,omitempty"`
}

type xmlStorageRecord struct {
	Identity xmlRecordIdentity `xml:"cr:RecordIdentity"`

	Site        string `xml:"cr:Site"`
	Project     string `xml:"cr:Project"`
	User        string `xml:"cr:User"`
	InstanceID  string `xml:"cr:InstanceId"`
	StorageType string `xml:"cr:StorageType"`
	StartTime   string `xml:"cr:StartTime"`
	EndTime     string `xml:"cr:EndTime"`
	Duration    string `xml:"cr:Duration"`
	Region      string `xml:"cr:Region"`
	Resource    string `xml:"cr:Resource"`
	Zone        string `xml:"cr:Zone"`
	Cost        string `xml:"cr:Cost"`

	AllocatedDisk uint64 `xml:"cr:AllocatedDisk"`
	FileCount     uint64 `xml:"cr:FileCount"`
}

// recordID builds the accounting identifier for one record. The kind
// discriminator is "cr" for compute and "sr" for storage records.
func recordID(kind string, common domain.RecordCommon) string {
	return fmt.Sprintf("ssc/%s/%s/%s/%d", common.Site, kind, common.InstanceID, common.EndTime.Unix())
}

func identity(kind string, common domain.RecordCommon) xmlRecordIdentity {
	return xmlRecordIdentity{
		CreateTime: common.CreatedAt.Format(time.RFC3339),
		RecordID:   recordID(kind, common),
	}
}

func isoDuration(d time.Duration) string {
	return fmt.Sprintf("PT%dS", int64(d.Seconds()))
}

func mapComputeRecord(r domain.ComputeRecord) xmlComputeRecord {
	out := xmlComputeRecord{
		Identity:        identity("cr", r.RecordCommon),
		Site:            r.Site,
		Project:         r.Project,
		User:            r.User,
		InstanceID:      r.InstanceID,
		StartTime:       r.StartTime.Format(time.RFC3339),
		EndTime:         r.EndTime.Format(time.RFC3339),
		Duration:        isoDuration(r.Duration),
		Region:          r.Region,
		Resource:        r.ResourceTag,
		Zone:            r.Zone,
		Flavour:         r.Flavour,
		Cost:            r.Cost.String(),
		AllocatedCPU:    r.AllocatedCPU.String(),
		AllocatedDisk:   r.AllocatedDiskBytes,
		AllocatedMemory: r.AllocatedMemoryMiB,
	}

	if r.UsedCPU != nil {
		out.UsedCPU = r.UsedCPU.String()
	}
	if r.UsedMemory != nil {
		out.UsedMemory = fmt.Sprintf("%d", *r.UsedMemory)
	}
	if r.UsedNetworkUp != nil {
		out.UsedNetworkUp = fmt.Sprintf("%d", *r.UsedNetworkUp)
	}
	if r.UsedNetworkDown != nil {
		out.UsedNetworkDown = fmt.Sprintf("%d", *r.UsedNetworkDown)
	}
	if r.IOPS != nil {
		out.IOPS = fmt.Sprintf("%d", *r.IOPS)
	}

	return out
}

func mapStorageRecord(r domain.StorageRecord) xmlStorageRecord {
	return xmlStorageRecord{
		Identity:      identity("sr", r.RecordCommon),
		Site:          r.Site,
		Project:       r.Project,
		User:          r.User,
		InstanceID:    r.InstanceID,
		StorageType:   r.StorageType,
		StartTime:     r.StartTime.Format(time.RFC3339),
		EndTime:       r.EndTime.Format(time.RFC3339),
		Duration:      isoDuration(r.Duration),
		Region:        r.Region,
		Resource:      r.ResourceTag,
		Zone:          r.Zone,
		Cost:          r.Cost.String(),
		AllocatedDisk: r.AllocatedDiskBytes,
		FileCount:     r.FileCount,
	}
}

// Encode writes the record set as a CloudRecords document. Compute
// records are emitted before storage records.
func Encode(w io.Writer, records *domain.RecordSet) error {
	doc := xmlCloudRecords{
		Xmlns: cloudRecordsNamespace,
	}

	for _, r := range records.Compute {
		doc.Compute = append(doc.Compute, mapComputeRecord(r))
	}
	for _, r := range records.Storage {
		doc.Storage = append(doc.Storage, mapStorageRecord(r))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode record set: %w", err)
	}

	return enc.Close()
}
