package scorm

import (
	"sort"

	"github.com/beevik/etree"
)

const (
	nsIMSCP = "http://www.imsproject.org/xsd/imscp_rootv1p1p2"
	nsADLCP = "http://www.adlnet.org/xsd/adlcp_rootv1p2"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// buildManifest produces the imsmanifest.xml document: one organization with
// one item referencing one SCO resource whose file list is exactly the set
// of paths written into the archive. hrefs must therefore contain every
// archive path except the manifest itself.
func buildManifest(packageID, title string, hrefs []string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	manifest := doc.CreateElement("manifest")
	manifest.CreateAttr("identifier", packageID)
	manifest.CreateAttr("xmlns", nsIMSCP)
	manifest.CreateAttr("xmlns:adlcp", nsADLCP)
	manifest.CreateAttr("xmlns:xsi", nsXSI)
	manifest.CreateAttr("xsi:schemaLocation", nsIMSCP+" imscp_rootv1p1p2.xsd "+nsADLCP+" adlcp_rootv1p2.xsd")

	metadata := manifest.CreateElement("metadata")
	metadata.CreateElement("schema").SetText("ADL SCORM")
	metadata.CreateElement("schemaversion").SetText("1.2")
	metadata.CreateElement("adlcp:location").SetText(lomXMLPath)

	organizations := manifest.CreateElement("organizations")
	organizations.CreateAttr("default", "ORG-1")
	organization := organizations.CreateElement("organization")
	organization.CreateAttr("identifier", "ORG-1")
	organization.CreateElement("title").SetText(title)
	item := organization.CreateElement("item")
	item.CreateAttr("identifier", "ITEM-1")
	item.CreateAttr("identifierref", "RES-1")
	item.CreateElement("title").SetText(title)

	resources := manifest.CreateElement("resources")
	resource := resources.CreateElement("resource")
	resource.CreateAttr("identifier", "RES-1")
	resource.CreateAttr("type", "webcontent")
	resource.CreateAttr("adlcp:scormtype", "sco")
	resource.CreateAttr("href", indexPath)

	for _, href := range sortedUnique(hrefs) {
		file := resource.CreateElement("file")
		file.CreateAttr("href", href)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
